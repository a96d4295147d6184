package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the minimal command surface the REPL needs. The real App
// satisfies it; tests substitute a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Whoami(ctx context.Context) error
	Boost(ctx context.Context) error
	Tier(ctx context.Context) error
	ShowState(ctx context.Context) error
}

// runREPL reads lines from reader, dispatches the first token as a command,
// and loops until EOF or "exit". Command handlers report their own errors to
// the user; the loop only keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	fmt.Fprintln(out, "BoostFeed client (type 'help' for commands)")

	for {
		fmt.Fprintf(out, "bf> %s ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			fmt.Fprintln(out, err.Error())
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, "Available commands: whoami, boost, tier, state, logout, exit")
			} else {
				fmt.Fprintln(out, "Available commands: register, login, verify, resend, state, exit")
			}
		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "verify":
			_ = a.Verify(ctx)
		case "resend":
			_ = a.Resend(ctx)
		case "whoami":
			_ = a.Whoami(ctx)
		case "boost":
			_ = a.Boost(ctx)
		case "tier":
			_ = a.Tier(ctx)
		case "state":
			_ = a.ShowState(ctx)
		case "exit", "quit":
			return
		default:
			fmt.Fprintf(out, "Unknown command: %s\n", parts[0])
		}
	}
}

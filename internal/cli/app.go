// Package cli is the interactive terminal front end for the BoostFeed
// client. It stands in for the mobile presentation layer: every command goes
// through the auth service and the session store, never through the provider
// directly.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/boostfeed/go-client/internal/auth"
	"github.com/boostfeed/go-client/internal/config"
	"github.com/boostfeed/go-client/internal/logging"
	"github.com/boostfeed/go-client/internal/models"
	"github.com/boostfeed/go-client/internal/provider"
	"github.com/boostfeed/go-client/internal/session"
)

type App struct {
	svc    auth.Service
	store  *session.Store
	api    *provider.HTTPClient
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config, log logging.Logger) *App {
	api := provider.NewHTTPClient(cfg.APIEndpointURL, cfg.APIKey, cfg.RequestTimeout, log)
	records := provider.NewRESTRecords(cfg.APIEndpointURL, cfg.APIKey, cfg.RequestTimeout, api)

	return &App{
		svc:    auth.NewService(api, records, log),
		store:  session.NewStore(),
		api:    api,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run wires provider auth events into the session store and starts the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.api.Close()

	unsubscribe := a.svc.OnAuthStateChange(func(u *models.User) {
		a.log.Debug(ctx, "auth state changed", "signed_in", u != nil)
		a.store.Dispatch(session.SetUser{User: u})
	})
	defer unsubscribe()

	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.store.State().IsAuthenticated
}

// status renders the prompt suffix from the current session snapshot.
func (a *App) status() string {
	st := a.store.State()
	if st.User == nil {
		return ""
	}
	s := st.User.Email + " " + string(st.SubscriptionTier)
	if st.BoostModeEnabled {
		s += " boost"
	}
	return fmt.Sprintf("(%s)", s)
}

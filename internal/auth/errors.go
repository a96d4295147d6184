package auth

import (
	"errors"

	"github.com/boostfeed/go-client/internal/provider"
)

// ErrNotImplemented is the sentinel kind carried by every declared-but-unbuilt
// operation. Match with errors.Is instead of sniffing messages.
var ErrNotImplemented = errors.New("not implemented")

// Error is the uniform error value of the auth service: a human-readable
// message, optional provider error code, optional HTTP status. It never
// carries user or token data.
type Error struct {
	Message string
	Code    string
	Status  int

	kind error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.kind }

// NewError builds a local Error, used for validation and data-integrity
// failures raised before or after a remote call.
func NewError(msg string) *Error {
	return &Error{Message: msg}
}

// NotImplemented builds the stable capability-gap error for op, e.g.
// "Reset password not implemented yet".
func NotImplemented(op string) *Error {
	return &Error{Message: op + " not implemented yet", kind: ErrNotImplemented}
}

// wrapError applies the uniform translation rule at every operation
// boundary: an Error passes through unchanged, a provider-native error has
// message/code/status copied, and anything else is wrapped with its message
// or a generic fallback.
func wrapError(err error) *Error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	var pe *provider.Error
	if errors.As(err, &pe) {
		msg := pe.Message
		if msg == "" {
			msg = "Authentication error occurred"
		}
		return &Error{Message: msg, Code: pe.Code, Status: pe.Status}
	}

	msg := err.Error()
	if msg == "" {
		msg = "Authentication error occurred"
	}
	return &Error{Message: msg}
}

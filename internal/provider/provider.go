// Package provider wraps the remote identity backend: the auth endpoints
// issuing and revoking sessions, and the record store holding application
// profile rows. It performs the remote calls and returns raw results; all
// validation and business interpretation of errors happens a layer up.
package provider

import (
	"context"
	"time"
)

// Account is the identity provider's bare user record, distinct from the
// application-owned profile row.
type Account struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
}

// Session is a live token pair issued by the provider.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	TokenType    string   `json:"token_type"`
	Account      *Account `json:"user"`
}

// AuthResult is the payload of sign-up, sign-in, verify and refresh calls.
// Either field may be nil; the caller decides what absence means.
type AuthResult struct {
	Account *Account
	Session *Session
}

// AuthEvent identifies a change pushed on the auth-state channel.
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// OTPTypeSignup is the one-time-password purpose used for email verification.
const OTPTypeSignup = "signup"

// Client is the auth side of the provider boundary.
type Client interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*AuthResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*AuthResult, error)
	SignOut(ctx context.Context) error
	VerifyOTP(ctx context.Context, tokenHash, otpType string) (*AuthResult, error)
	Resend(ctx context.Context, otpType, email string) error
	RefreshSession(ctx context.Context) (*AuthResult, error)

	// GetUser returns the provider account for the current session, or
	// (nil, nil) when nobody is signed in.
	GetUser(ctx context.Context) (*Account, error)

	// GetSession returns a copy of the held session without a network call,
	// or (nil, nil) when none is held.
	GetSession(ctx context.Context) (*Session, error)

	// OnAuthStateChange registers fn on the auth-event channel. The returned
	// func unsubscribes exactly that registration and is safe to call more
	// than once.
	OnAuthStateChange(fn func(event AuthEvent, session *Session)) func()

	Close() error
}

// Records is the profile record store side of the boundary, keyed by user id.
type Records interface {
	Insert(ctx context.Context, table string, record any) error
	Update(ctx context.Context, table, id string, partial map[string]any) error
	SelectByID(ctx context.Context, table, id string, dest any) error
}

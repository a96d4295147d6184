// Package auth is the client's authentication façade: it validates
// credentials, drives the identity provider, reconciles the application
// profile record, and reports failures through one uniform Error type.
package auth

import (
	"context"

	"github.com/boostfeed/go-client/internal/models"
)

// RegisterResult is the outcome of a successful registration.
// NeedsVerification is true when the provider has not pre-confirmed the
// email and the user still has to follow the verification link.
type RegisterResult struct {
	User              models.User
	NeedsVerification bool
}

// Service defines the authentication operations exposed to the presentation
// layer and other feature modules. Every operation may fail with *Error.
//
// Operations marked "not implemented" are contractually declared extension
// points; they fail with a stable message and errors.Is(err,
// ErrNotImplemented) holds.
type Service interface {
	// Registration
	Register(ctx context.Context, creds models.RegisterCredentials) (*RegisterResult, error)
	VerifyEmail(ctx context.Context, token string) (bool, error)
	ResendVerification(ctx context.Context, email string) error

	// Authentication
	Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthToken, error)
	Logout(ctx context.Context) error
	RefreshToken(ctx context.Context) (*models.AuthToken, error)

	// Password management (not implemented)
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
	UpdatePassword(ctx context.Context, newPassword, currentPassword string) error

	// Session management. Absence of a signed-in user or session is a normal
	// (nil, nil) result, not an error.
	GetCurrentUser(ctx context.Context) (*models.User, error)
	GetSession(ctx context.Context) (*models.AuthToken, error)

	// OnAuthStateChange invokes fn with the profile of the signed-in user,
	// or nil on sign-out or when the profile cannot be fetched. The returned
	// func unsubscribes this registration; calling it twice is safe.
	OnAuthStateChange(fn func(user *models.User)) func()

	// Profile management (not implemented)
	UpdateProfile(ctx context.Context, updates map[string]any) (*models.User, error)
	UploadProfilePicture(ctx context.Context, imagePath string) (string, error)
	DeleteAccount(ctx context.Context) error

	// Boost mode & subscription (not implemented)
	ToggleBoostMode(ctx context.Context) (bool, error)
	UpdateSubscriptionTier(ctx context.Context, tier models.SubscriptionTier) error
}

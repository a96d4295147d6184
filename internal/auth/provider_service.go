package auth

import (
	"context"
	"strings"
	"time"

	"github.com/boostfeed/go-client/internal/logging"
	"github.com/boostfeed/go-client/internal/models"
	"github.com/boostfeed/go-client/internal/provider"
	"github.com/boostfeed/go-client/internal/validation"
)

// usersTable is the application profile table in the record store.
const usersTable = "users"

const (
	defaultExpiresIn = 3600
	defaultTokenType = "bearer"
)

// providerService is the production Service bound to the identity provider
// and its record store.
type providerService struct {
	client  provider.Client
	records provider.Records
	log     logging.Logger
	now     func() time.Time
}

// NewService constructs the production Service.
func NewService(client provider.Client, records provider.Records, log logging.Logger) Service {
	return &providerService{
		client:  client,
		records: records,
		log:     log,
		now:     time.Now,
	}
}

// normalizeEmail lower-cases and trims the address; emails are compared
// case-insensitively everywhere downstream.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *providerService) Register(ctx context.Context, creds models.RegisterCredentials) (*RegisterResult, error) {
	email := normalizeEmail(creds.Email)

	if !validation.ValidateEmail(email) {
		return nil, NewError("Invalid email format")
	}
	if pv := validation.ValidatePassword(creds.Password); !pv.IsValid {
		return nil, NewError(strings.Join(pv.Errors, ", "))
	}
	if !validation.ValidateDisplayName(creds.DisplayName) {
		return nil, NewError("Display name must be between 2 and 50 characters")
	}

	res, err := s.client.SignUp(ctx, email, creds.Password, map[string]any{
		"display_name": creds.DisplayName,
	})
	if err != nil {
		return nil, wrapError(err)
	}
	if res.Account == nil {
		return nil, NewError("Registration failed - no user returned")
	}

	now := s.now().UTC()
	user := models.User{
		ID:               res.Account.ID,
		Email:            email,
		DisplayName:      creds.DisplayName,
		BoostModeEnabled: false,
		SubscriptionTier: models.TierFree,
		EmailVerified:    false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Best-effort: the provider account already exists and cannot be rolled
	// back, so a failed profile write must not fail the registration.
	if err := s.records.Insert(ctx, usersTable, user); err != nil {
		s.log.Error(ctx, "failed to create user profile", "user_id", user.ID, "err", err)
	}

	return &RegisterResult{
		User:              user,
		NeedsVerification: res.Account.EmailConfirmedAt == nil,
	}, nil
}

// VerifyEmail redeems a signup verification token. It returns false without
// an error when the provider reports neither an error nor a user, e.g. for
// an already-consumed token.
func (s *providerService) VerifyEmail(ctx context.Context, token string) (bool, error) {
	res, err := s.client.VerifyOTP(ctx, token, provider.OTPTypeSignup)
	if err != nil {
		return false, wrapError(err)
	}
	if res.Account == nil {
		return false, nil
	}

	partial := map[string]any{
		"email_verified": true,
		"updated_at":     s.now().UTC(),
	}
	if err := s.records.Update(ctx, usersTable, res.Account.ID, partial); err != nil {
		s.log.Error(ctx, "failed to mark profile verified", "user_id", res.Account.ID, "err", err)
	}

	return true, nil
}

func (s *providerService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !validation.ValidateEmail(email) {
		return NewError("Invalid email format")
	}
	if err := s.client.Resend(ctx, provider.OTPTypeSignup, email); err != nil {
		return wrapError(err)
	}
	return nil
}

func (s *providerService) Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthToken, error) {
	email := normalizeEmail(creds.Email)

	if !validation.ValidateEmail(email) {
		return nil, NewError("Invalid email format")
	}
	if creds.Password == "" {
		return nil, NewError("Password is required")
	}

	res, err := s.client.SignInWithPassword(ctx, email, creds.Password)
	if err != nil {
		return nil, wrapError(err)
	}
	if res.Account == nil || res.Session == nil {
		return nil, NewError("Login failed - no user or session returned")
	}

	var user models.User
	if err := s.records.SelectByID(ctx, usersTable, res.Account.ID, &user); err != nil {
		return nil, NewError("Failed to fetch user profile")
	}

	return assembleToken(res.Session, user), nil
}

func (s *providerService) Logout(ctx context.Context) error {
	if err := s.client.SignOut(ctx); err != nil {
		return wrapError(err)
	}
	return nil
}

func (s *providerService) RefreshToken(ctx context.Context) (*models.AuthToken, error) {
	res, err := s.client.RefreshSession(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	if res.Account == nil || res.Session == nil {
		return nil, NewError("Token refresh failed - no session returned")
	}

	var user models.User
	if err := s.records.SelectByID(ctx, usersTable, res.Account.ID, &user); err != nil {
		return nil, NewError("Failed to fetch user profile during token refresh")
	}

	return assembleToken(res.Session, user), nil
}

func (s *providerService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	return NotImplemented("Reset password")
}

func (s *providerService) UpdatePassword(ctx context.Context, newPassword, currentPassword string) error {
	return NotImplemented("Update password")
}

func (s *providerService) GetCurrentUser(ctx context.Context) (*models.User, error) {
	acct, err := s.client.GetUser(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	if acct == nil {
		return nil, nil
	}

	var user models.User
	if err := s.records.SelectByID(ctx, usersTable, acct.ID, &user); err != nil {
		s.log.Error(ctx, "failed to fetch user profile", "user_id", acct.ID, "err", err)
		return nil, nil
	}
	return &user, nil
}

func (s *providerService) GetSession(ctx context.Context) (*models.AuthToken, error) {
	sess, err := s.client.GetSession(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	if sess == nil || sess.Account == nil {
		return nil, nil
	}

	var user models.User
	if err := s.records.SelectByID(ctx, usersTable, sess.Account.ID, &user); err != nil {
		s.log.Error(ctx, "failed to fetch user profile", "user_id", sess.Account.ID, "err", err)
		return nil, nil
	}

	return assembleToken(sess, user), nil
}

func (s *providerService) OnAuthStateChange(fn func(user *models.User)) func() {
	return s.client.OnAuthStateChange(func(ev provider.AuthEvent, sess *provider.Session) {
		switch ev {
		case provider.EventSignedIn:
			if sess == nil || sess.Account == nil {
				return
			}
			// There is no caller above the event channel to catch a fetch
			// error, so it degrades to a nil user.
			var user models.User
			if err := s.records.SelectByID(context.Background(), usersTable, sess.Account.ID, &user); err != nil {
				s.log.Error(context.Background(), "failed to fetch user profile on auth event",
					"user_id", sess.Account.ID, "err", err)
				fn(nil)
				return
			}
			fn(&user)
		case provider.EventSignedOut:
			fn(nil)
		}
	})
}

func (s *providerService) UpdateProfile(ctx context.Context, updates map[string]any) (*models.User, error) {
	return nil, NotImplemented("Update profile")
}

func (s *providerService) UploadProfilePicture(ctx context.Context, imagePath string) (string, error) {
	return "", NotImplemented("Upload profile picture")
}

func (s *providerService) DeleteAccount(ctx context.Context) error {
	return NotImplemented("Delete account")
}

func (s *providerService) ToggleBoostMode(ctx context.Context) (bool, error) {
	return false, NotImplemented("Toggle boost mode")
}

func (s *providerService) UpdateSubscriptionTier(ctx context.Context, tier models.SubscriptionTier) error {
	return NotImplemented("Update subscription tier")
}

// assembleToken pairs a provider session with the fetched profile, filling
// in defaults when the provider omits expiry or token type.
func assembleToken(sess *provider.Session, user models.User) *models.AuthToken {
	token := &models.AuthToken{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresIn:    sess.ExpiresIn,
		TokenType:    sess.TokenType,
		User:         user,
	}
	if token.ExpiresIn == 0 {
		token.ExpiresIn = defaultExpiresIn
	}
	if token.TokenType == "" {
		token.TokenType = defaultTokenType
	}
	return token
}

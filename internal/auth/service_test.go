package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boostfeed/go-client/internal/logging"
	"github.com/boostfeed/go-client/internal/models"
	"github.com/boostfeed/go-client/internal/provider"
)

// ---- fakes ----

// fakeClient implements provider.Client for unit tests. Ret/Err fields
// program the behavior; Last*/Calls fields capture arguments for assertions.
type fakeClient struct {
	SignUpRes          *provider.AuthResult
	SignUpErr          error
	SignUpCalls        int
	LastSignUpEmail    string
	LastSignUpPassword string
	LastSignUpMetadata map[string]any

	SignInRes   *provider.AuthResult
	SignInErr   error
	SignInCalls int
	LastSignInEmail,
	LastSignInPassword string

	SignOutErr   error
	SignOutCalls int

	VerifyRes       *provider.AuthResult
	VerifyErr       error
	LastVerifyToken string
	LastVerifyType  string

	ResendErr       error
	ResendCalls     int
	LastResendEmail string
	LastResendType  string

	RefreshRes *provider.AuthResult
	RefreshErr error

	GetUserRes *provider.Account
	GetUserErr error

	GetSessionRes *provider.Session
	GetSessionErr error

	nextSubID int
	subs      map[int]func(provider.AuthEvent, *provider.Session)
}

func (f *fakeClient) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*provider.AuthResult, error) {
	f.SignUpCalls++
	f.LastSignUpEmail = email
	f.LastSignUpPassword = password
	f.LastSignUpMetadata = metadata
	return f.SignUpRes, f.SignUpErr
}

func (f *fakeClient) SignInWithPassword(ctx context.Context, email, password string) (*provider.AuthResult, error) {
	f.SignInCalls++
	f.LastSignInEmail = email
	f.LastSignInPassword = password
	return f.SignInRes, f.SignInErr
}

func (f *fakeClient) SignOut(ctx context.Context) error {
	f.SignOutCalls++
	return f.SignOutErr
}

func (f *fakeClient) VerifyOTP(ctx context.Context, tokenHash, otpType string) (*provider.AuthResult, error) {
	f.LastVerifyToken = tokenHash
	f.LastVerifyType = otpType
	return f.VerifyRes, f.VerifyErr
}

func (f *fakeClient) Resend(ctx context.Context, otpType, email string) error {
	f.ResendCalls++
	f.LastResendType = otpType
	f.LastResendEmail = email
	return f.ResendErr
}

func (f *fakeClient) RefreshSession(ctx context.Context) (*provider.AuthResult, error) {
	return f.RefreshRes, f.RefreshErr
}

func (f *fakeClient) GetUser(ctx context.Context) (*provider.Account, error) {
	return f.GetUserRes, f.GetUserErr
}

func (f *fakeClient) GetSession(ctx context.Context) (*provider.Session, error) {
	return f.GetSessionRes, f.GetSessionErr
}

func (f *fakeClient) OnAuthStateChange(fn func(provider.AuthEvent, *provider.Session)) func() {
	if f.subs == nil {
		f.subs = make(map[int]func(provider.AuthEvent, *provider.Session))
	}
	id := f.nextSubID
	f.nextSubID++
	f.subs[id] = fn
	return func() { delete(f.subs, id) }
}

func (f *fakeClient) emit(ev provider.AuthEvent, s *provider.Session) {
	for _, fn := range f.subs {
		fn(ev, s)
	}
}

func (f *fakeClient) Close() error { return nil }

// fakeRecords implements provider.Records.
type fakeRecords struct {
	InsertErr        error
	InsertCalls      int
	LastInsertTable  string
	LastInsertRecord any

	UpdateErr       error
	UpdateCalls     int
	LastUpdateTable string
	LastUpdateID    string
	LastUpdate      map[string]any

	SelectUser  *models.User
	SelectErr   error
	SelectCalls int
	LastSelects []string
}

func (f *fakeRecords) Insert(ctx context.Context, table string, record any) error {
	f.InsertCalls++
	f.LastInsertTable = table
	f.LastInsertRecord = record
	return f.InsertErr
}

func (f *fakeRecords) Update(ctx context.Context, table, id string, partial map[string]any) error {
	f.UpdateCalls++
	f.LastUpdateTable = table
	f.LastUpdateID = id
	f.LastUpdate = partial
	return f.UpdateErr
}

func (f *fakeRecords) SelectByID(ctx context.Context, table, id string, dest any) error {
	f.SelectCalls++
	f.LastSelects = append(f.LastSelects, id)
	if f.SelectErr != nil {
		return f.SelectErr
	}
	if f.SelectUser != nil {
		*dest.(*models.User) = *f.SelectUser
	}
	return nil
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(fc *fakeClient, fr *fakeRecords) *providerService {
	return &providerService{
		client:  fc,
		records: fr,
		log:     logging.Nop{},
		now:     func() time.Time { return testNow },
	}
}

func confirmed(t time.Time) *time.Time { return &t }

// ---- Register ----

func TestRegisterValidationShortCircuits(t *testing.T) {
	tests := []struct {
		name    string
		creds   models.RegisterCredentials
		wantMsg string
	}{
		{
			name:    "invalid email",
			creds:   models.RegisterCredentials{Email: "not-an-email", Password: "StrongPass123", DisplayName: "Alice"},
			wantMsg: "Invalid email format",
		},
		{
			name:    "weak password joins all errors",
			creds:   models.RegisterCredentials{Email: "a@b.co", Password: "weak", DisplayName: "Alice"},
			wantMsg: "Password must be at least 8 characters long, Password must contain at least one uppercase letter, Password must contain at least one number",
		},
		{
			name:    "short display name",
			creds:   models.RegisterCredentials{Email: "a@b.co", Password: "StrongPass123", DisplayName: "A"},
			wantMsg: "Display name must be between 2 and 50 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{}
			s := newTestService(fc, &fakeRecords{})

			_, err := s.Register(context.Background(), tt.creds)

			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Zero(t, fc.SignUpCalls, "validation must fail before any network call")
		})
	}
}

func TestRegisterSuccessNeedsVerification(t *testing.T) {
	fc := &fakeClient{
		SignUpRes: &provider.AuthResult{Account: &provider.Account{ID: "u-1", Email: "alice@example.com"}},
	}
	fr := &fakeRecords{}
	s := newTestService(fc, fr)

	res, err := s.Register(context.Background(), models.RegisterCredentials{
		Email:       "Alice@Example.com",
		Password:    "StrongPass123",
		DisplayName: "Alice",
	})

	require.NoError(t, err)
	assert.True(t, res.NeedsVerification)
	assert.Equal(t, "u-1", res.User.ID)
	assert.Equal(t, "alice@example.com", res.User.Email, "email is normalized before use")
	assert.Equal(t, models.TierFree, res.User.SubscriptionTier)
	assert.False(t, res.User.BoostModeEnabled)
	assert.False(t, res.User.EmailVerified)
	assert.Equal(t, testNow, res.User.CreatedAt)

	assert.Equal(t, "alice@example.com", fc.LastSignUpEmail)
	assert.Equal(t, map[string]any{"display_name": "Alice"}, fc.LastSignUpMetadata)

	require.Equal(t, 1, fr.InsertCalls)
	assert.Equal(t, "users", fr.LastInsertTable)
	assert.Equal(t, res.User, fr.LastInsertRecord)
}

func TestRegisterPreConfirmedEmail(t *testing.T) {
	fc := &fakeClient{
		SignUpRes: &provider.AuthResult{
			Account: &provider.Account{ID: "u-1", EmailConfirmedAt: confirmed(testNow)},
		},
	}
	s := newTestService(fc, &fakeRecords{})

	res, err := s.Register(context.Background(), models.RegisterCredentials{
		Email: "a@b.co", Password: "StrongPass123", DisplayName: "Alice",
	})

	require.NoError(t, err)
	assert.False(t, res.NeedsVerification)
}

func TestRegisterNoUserReturned(t *testing.T) {
	fc := &fakeClient{SignUpRes: &provider.AuthResult{}}
	s := newTestService(fc, &fakeRecords{})

	_, err := s.Register(context.Background(), models.RegisterCredentials{
		Email: "a@b.co", Password: "StrongPass123", DisplayName: "Alice",
	})

	require.Error(t, err)
	assert.Equal(t, "Registration failed - no user returned", err.Error())
}

func TestRegisterProviderErrorIsWrapped(t *testing.T) {
	fc := &fakeClient{
		SignUpErr: &provider.Error{Message: "User already registered", Code: "user_already_exists", Status: 422},
	}
	s := newTestService(fc, &fakeRecords{})

	_, err := s.Register(context.Background(), models.RegisterCredentials{
		Email: "a@b.co", Password: "StrongPass123", DisplayName: "Alice",
	})

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "User already registered", ae.Message)
	assert.Equal(t, "user_already_exists", ae.Code)
	assert.Equal(t, 422, ae.Status)
}

func TestRegisterProfileWriteFailureIsNonFatal(t *testing.T) {
	fc := &fakeClient{
		SignUpRes: &provider.AuthResult{Account: &provider.Account{ID: "u-1"}},
	}
	fr := &fakeRecords{InsertErr: &provider.Error{Message: "permission denied", Status: 403}}
	s := newTestService(fc, fr)

	res, err := s.Register(context.Background(), models.RegisterCredentials{
		Email: "a@b.co", Password: "StrongPass123", DisplayName: "Alice",
	})

	require.NoError(t, err, "profile write failure must not fail registration")
	assert.True(t, res.NeedsVerification)
}

// ---- VerifyEmail ----

func TestVerifyEmailSuccess(t *testing.T) {
	fc := &fakeClient{
		VerifyRes: &provider.AuthResult{Account: &provider.Account{ID: "u-1"}},
	}
	fr := &fakeRecords{}
	s := newTestService(fc, fr)

	ok, err := s.VerifyEmail(context.Background(), "tok-123")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-123", fc.LastVerifyToken)
	assert.Equal(t, provider.OTPTypeSignup, fc.LastVerifyType)

	require.Equal(t, 1, fr.UpdateCalls)
	assert.Equal(t, "users", fr.LastUpdateTable)
	assert.Equal(t, "u-1", fr.LastUpdateID)
	assert.Equal(t, true, fr.LastUpdate["email_verified"])
	assert.Equal(t, testNow, fr.LastUpdate["updated_at"])
}

func TestVerifyEmailConsumedTokenIsNotAnError(t *testing.T) {
	fc := &fakeClient{VerifyRes: &provider.AuthResult{}}
	fr := &fakeRecords{}
	s := newTestService(fc, fr)

	ok, err := s.VerifyEmail(context.Background(), "tok-123")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, fr.UpdateCalls)
}

func TestVerifyEmailProviderError(t *testing.T) {
	fc := &fakeClient{VerifyErr: &provider.Error{Message: "Token has expired or is invalid", Status: 403}}
	s := newTestService(fc, &fakeRecords{})

	_, err := s.VerifyEmail(context.Background(), "tok-123")

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 403, ae.Status)
}

// ---- ResendVerification ----

func TestResendVerification(t *testing.T) {
	t.Run("invalid email fails before network call", func(t *testing.T) {
		fc := &fakeClient{}
		s := newTestService(fc, &fakeRecords{})

		err := s.ResendVerification(context.Background(), "nope")

		require.Error(t, err)
		assert.Equal(t, "Invalid email format", err.Error())
		assert.Zero(t, fc.ResendCalls)
	})

	t.Run("delegates with signup purpose", func(t *testing.T) {
		fc := &fakeClient{}
		s := newTestService(fc, &fakeRecords{})

		require.NoError(t, s.ResendVerification(context.Background(), "  Alice@Example.com "))
		assert.Equal(t, provider.OTPTypeSignup, fc.LastResendType)
		assert.Equal(t, "alice@example.com", fc.LastResendEmail)
	})
}

// ---- Login ----

func sessionFor(id string) *provider.AuthResult {
	acct := &provider.Account{ID: id}
	return &provider.AuthResult{
		Account: acct,
		Session: &provider.Session{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresIn:    7200,
			TokenType:    "bearer",
			Account:      acct,
		},
	}
}

func TestLoginValidation(t *testing.T) {
	fc := &fakeClient{}
	s := newTestService(fc, &fakeRecords{})

	_, err := s.Login(context.Background(), models.LoginCredentials{Email: "bad", Password: "x"})
	require.EqualError(t, err, "Invalid email format")

	_, err = s.Login(context.Background(), models.LoginCredentials{Email: "a@b.co", Password: ""})
	require.EqualError(t, err, "Password is required")

	assert.Zero(t, fc.SignInCalls)
}

func TestLoginSuccess(t *testing.T) {
	fc := &fakeClient{SignInRes: sessionFor("u-1")}
	fr := &fakeRecords{SelectUser: &models.User{
		ID: "u-1", Email: "a@b.co", DisplayName: "Alice",
		BoostModeEnabled: true, SubscriptionTier: models.TierPremium,
	}}
	s := newTestService(fc, fr)

	token, err := s.Login(context.Background(), models.LoginCredentials{Email: "a@b.co", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "access", token.AccessToken)
	assert.Equal(t, "refresh", token.RefreshToken)
	assert.Equal(t, int64(7200), token.ExpiresIn)
	assert.Equal(t, "Alice", token.User.DisplayName)
	assert.Equal(t, models.TierPremium, token.User.SubscriptionTier)
	assert.Equal(t, []string{"u-1"}, fr.LastSelects)
}

func TestLoginDefaultsExpiryAndTokenType(t *testing.T) {
	res := sessionFor("u-1")
	res.Session.ExpiresIn = 0
	res.Session.TokenType = ""
	fc := &fakeClient{SignInRes: res}
	fr := &fakeRecords{SelectUser: &models.User{ID: "u-1"}}
	s := newTestService(fc, fr)

	token, err := s.Login(context.Background(), models.LoginCredentials{Email: "a@b.co", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, int64(3600), token.ExpiresIn)
	assert.Equal(t, "bearer", token.TokenType)
}

func TestLoginNoSessionReturned(t *testing.T) {
	fc := &fakeClient{SignInRes: &provider.AuthResult{Account: &provider.Account{ID: "u-1"}}}
	s := newTestService(fc, &fakeRecords{})

	_, err := s.Login(context.Background(), models.LoginCredentials{Email: "a@b.co", Password: "pw"})

	require.EqualError(t, err, "Login failed - no user or session returned")
}

func TestLoginProfileFetchIsFatal(t *testing.T) {
	fc := &fakeClient{SignInRes: sessionFor("u-1")}
	fr := &fakeRecords{SelectErr: provider.ErrRecordNotFound}
	s := newTestService(fc, fr)

	_, err := s.Login(context.Background(), models.LoginCredentials{Email: "a@b.co", Password: "pw"})

	require.EqualError(t, err, "Failed to fetch user profile")
}

// ---- Logout / RefreshToken ----

func TestLogout(t *testing.T) {
	fc := &fakeClient{}
	s := newTestService(fc, &fakeRecords{})
	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, 1, fc.SignOutCalls)

	fc.SignOutErr = &provider.Error{Message: "boom", Status: 500}
	err := s.Logout(context.Background())
	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 500, ae.Status)
}

func TestRefreshToken(t *testing.T) {
	t.Run("no session returned", func(t *testing.T) {
		fc := &fakeClient{RefreshRes: &provider.AuthResult{}}
		s := newTestService(fc, &fakeRecords{})

		_, err := s.RefreshToken(context.Background())
		require.EqualError(t, err, "Token refresh failed - no session returned")
	})

	t.Run("profile fetch is fatal", func(t *testing.T) {
		fc := &fakeClient{RefreshRes: sessionFor("u-1")}
		fr := &fakeRecords{SelectErr: provider.ErrRecordNotFound}
		s := newTestService(fc, fr)

		_, err := s.RefreshToken(context.Background())
		require.EqualError(t, err, "Failed to fetch user profile during token refresh")
	})

	t.Run("success", func(t *testing.T) {
		fc := &fakeClient{RefreshRes: sessionFor("u-1")}
		fr := &fakeRecords{SelectUser: &models.User{ID: "u-1", DisplayName: "Alice"}}
		s := newTestService(fc, fr)

		token, err := s.RefreshToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Alice", token.User.DisplayName)
	})
}

// ---- Session management ----

func TestGetCurrentUser(t *testing.T) {
	t.Run("signed out is nil not error", func(t *testing.T) {
		s := newTestService(&fakeClient{}, &fakeRecords{})
		user, err := s.GetCurrentUser(context.Background())
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("profile fetch failure degrades to nil", func(t *testing.T) {
		fc := &fakeClient{GetUserRes: &provider.Account{ID: "u-1"}}
		fr := &fakeRecords{SelectErr: provider.ErrRecordNotFound}
		s := newTestService(fc, fr)

		user, err := s.GetCurrentUser(context.Background())
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("returns profile", func(t *testing.T) {
		fc := &fakeClient{GetUserRes: &provider.Account{ID: "u-1"}}
		fr := &fakeRecords{SelectUser: &models.User{ID: "u-1", Email: "a@b.co"}}
		s := newTestService(fc, fr)

		user, err := s.GetCurrentUser(context.Background())
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "a@b.co", user.Email)
	})
}

func TestGetSession(t *testing.T) {
	t.Run("no session is nil not error", func(t *testing.T) {
		s := newTestService(&fakeClient{}, &fakeRecords{})
		token, err := s.GetSession(context.Background())
		require.NoError(t, err)
		assert.Nil(t, token)
	})

	t.Run("assembles token with profile", func(t *testing.T) {
		acct := &provider.Account{ID: "u-1"}
		fc := &fakeClient{GetSessionRes: &provider.Session{AccessToken: "access", Account: acct}}
		fr := &fakeRecords{SelectUser: &models.User{ID: "u-1", DisplayName: "Alice"}}
		s := newTestService(fc, fr)

		token, err := s.GetSession(context.Background())
		require.NoError(t, err)
		require.NotNil(t, token)
		assert.Equal(t, "access", token.AccessToken)
		assert.Equal(t, int64(3600), token.ExpiresIn)
		assert.Equal(t, "Alice", token.User.DisplayName)
	})
}

// ---- not-implemented operations ----

func TestNotImplementedOperations(t *testing.T) {
	s := newTestService(&fakeClient{}, &fakeRecords{})
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"reset password", func() error { return s.ResetPassword(ctx, models.ResetPasswordRequest{Email: "a@b.co"}) },
			"Reset password not implemented yet"},
		{"update password", func() error { return s.UpdatePassword(ctx, "NewPass123", "OldPass123") },
			"Update password not implemented yet"},
		{"update profile", func() error { _, err := s.UpdateProfile(ctx, map[string]any{"bio": "hi"}); return err },
			"Update profile not implemented yet"},
		{"upload profile picture", func() error { _, err := s.UploadProfilePicture(ctx, "/tmp/pic.png"); return err },
			"Upload profile picture not implemented yet"},
		{"delete account", func() error { return s.DeleteAccount(ctx) },
			"Delete account not implemented yet"},
		{"toggle boost mode", func() error { _, err := s.ToggleBoostMode(ctx); return err },
			"Toggle boost mode not implemented yet"},
		{"update subscription tier", func() error { return s.UpdateSubscriptionTier(ctx, models.TierPremium) },
			"Update subscription tier not implemented yet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.ErrorIs(t, err, ErrNotImplemented)
		})
	}
}

// ---- auth state change ----

func TestOnAuthStateChange(t *testing.T) {
	signedIn := &provider.Session{Account: &provider.Account{ID: "u-1"}}

	t.Run("signed-in fetches profile", func(t *testing.T) {
		fc := &fakeClient{}
		fr := &fakeRecords{SelectUser: &models.User{ID: "u-1", DisplayName: "Alice"}}
		s := newTestService(fc, fr)

		var got *models.User
		s.OnAuthStateChange(func(u *models.User) { got = u })

		fc.emit(provider.EventSignedIn, signedIn)
		require.NotNil(t, got)
		assert.Equal(t, "Alice", got.DisplayName)
	})

	t.Run("profile fetch failure degrades to nil callback", func(t *testing.T) {
		fc := &fakeClient{}
		fr := &fakeRecords{SelectErr: provider.ErrRecordNotFound}
		s := newTestService(fc, fr)

		called := false
		var got *models.User
		s.OnAuthStateChange(func(u *models.User) { called = true; got = u })

		fc.emit(provider.EventSignedIn, signedIn)
		assert.True(t, called)
		assert.Nil(t, got)
	})

	t.Run("signed-out passes nil", func(t *testing.T) {
		fc := &fakeClient{}
		s := newTestService(fc, &fakeRecords{})

		calls := 0
		s.OnAuthStateChange(func(u *models.User) {
			calls++
			assert.Nil(t, u)
		})

		fc.emit(provider.EventSignedOut, nil)
		assert.Equal(t, 1, calls)
	})

	t.Run("unsubscribes are independent", func(t *testing.T) {
		fc := &fakeClient{}
		fr := &fakeRecords{SelectUser: &models.User{ID: "u-1"}}
		s := newTestService(fc, fr)

		var first, second int
		unsub1 := s.OnAuthStateChange(func(u *models.User) { first++ })
		unsub2 := s.OnAuthStateChange(func(u *models.User) { second++ })

		fc.emit(provider.EventSignedIn, signedIn)
		unsub1()
		unsub1() // safe to call twice
		fc.emit(provider.EventSignedIn, signedIn)
		unsub2()

		assert.Equal(t, 1, first)
		assert.Equal(t, 2, second)
	})
}

// sanity: wrapped unexpected errors keep their message
func TestLoginUnexpectedErrorWrapped(t *testing.T) {
	fc := &fakeClient{SignInErr: errors.New("connection reset")}
	s := newTestService(fc, &fakeRecords{})

	_, err := s.Login(context.Background(), models.LoginCredentials{Email: "a@b.co", Password: "pw"})

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "connection reset", ae.Message)
}

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/boostfeed/go-client/internal/logging"
)

// expiryLeeway is subtracted from the access token's exp claim so a token
// about to lapse mid-request is refreshed up front.
const expiryLeeway = 10 * time.Second

// HTTPClient talks to the identity backend's REST auth endpoints. It holds
// the current session in memory and emits auth events after calls that
// change it.
type HTTPClient struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	log     logging.Logger

	mu      sync.Mutex
	session *Session

	events hub
}

// NewHTTPClient builds a client for the given backend base URL and API key.
// A zero timeout leaves the underlying http.Client without one.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *HTTPClient) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*AuthResult, error) {
	body := map[string]any{"email": email, "password": password}
	if len(metadata) > 0 {
		body["data"] = metadata
	}

	data, err := c.do(ctx, http.MethodPost, "/auth/v1/signup", body, "")
	if err != nil {
		return nil, err
	}

	// The backend answers with a session when the email is pre-confirmed and
	// with a bare account when verification is still pending.
	var sess Session
	if err := json.Unmarshal(data, &sess); err == nil && sess.AccessToken != "" {
		c.setSession(&sess)
		c.events.emit(EventSignedIn, c.snapshot())
		return &AuthResult{Account: sess.Account, Session: &sess}, nil
	}

	var acct Account
	if err := json.Unmarshal(data, &acct); err == nil && acct.ID != "" {
		return &AuthResult{Account: &acct}, nil
	}

	return &AuthResult{}, nil
}

func (c *HTTPClient) SignInWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]any{"email": email, "password": password}

	data, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", body, "")
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, &Error{Message: fmt.Sprintf("malformed token response: %v", err)}
	}
	if sess.AccessToken == "" {
		return &AuthResult{}, nil
	}

	c.setSession(&sess)
	c.events.emit(EventSignedIn, c.snapshot())
	return &AuthResult{Account: sess.Account, Session: &sess}, nil
}

func (c *HTTPClient) SignOut(ctx context.Context) error {
	sess := c.snapshot()
	if sess == nil {
		return nil
	}

	if _, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, sess.AccessToken); err != nil {
		return err
	}

	c.setSession(nil)
	c.events.emit(EventSignedOut, nil)
	return nil
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, tokenHash, otpType string) (*AuthResult, error) {
	body := map[string]any{"token_hash": tokenHash, "type": otpType}

	data, err := c.do(ctx, http.MethodPost, "/auth/v1/verify", body, "")
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, &Error{Message: fmt.Sprintf("malformed verify response: %v", err)}
	}
	if sess.AccessToken == "" {
		// Token already consumed: no error, no session, no account.
		return &AuthResult{Account: sess.Account}, nil
	}

	c.setSession(&sess)
	c.events.emit(EventSignedIn, c.snapshot())
	return &AuthResult{Account: sess.Account, Session: &sess}, nil
}

func (c *HTTPClient) Resend(ctx context.Context, otpType, email string) error {
	body := map[string]any{"type": otpType, "email": email}
	_, err := c.do(ctx, http.MethodPost, "/auth/v1/resend", body, "")
	return err
}

func (c *HTTPClient) RefreshSession(ctx context.Context) (*AuthResult, error) {
	sess := c.snapshot()
	if sess == nil || sess.RefreshToken == "" {
		return nil, &Error{Message: "no refresh token available", Status: http.StatusUnauthorized}
	}

	body := map[string]any{"refresh_token": sess.RefreshToken}
	data, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", body, "")
	if err != nil {
		return nil, err
	}

	var next Session
	if err := json.Unmarshal(data, &next); err != nil {
		return nil, &Error{Message: fmt.Sprintf("malformed token response: %v", err)}
	}
	if next.AccessToken == "" {
		return &AuthResult{}, nil
	}

	c.setSession(&next)
	c.events.emit(EventTokenRefreshed, c.snapshot())
	return &AuthResult{Account: next.Account, Session: &next}, nil
}

func (c *HTTPClient) GetUser(ctx context.Context) (*Account, error) {
	if c.snapshot() == nil {
		return nil, nil
	}

	data, err := c.authedDo(ctx, http.MethodGet, "/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}

	var acct Account
	if err := json.Unmarshal(data, &acct); err != nil {
		return nil, &Error{Message: fmt.Sprintf("malformed user response: %v", err)}
	}
	if acct.ID == "" {
		return nil, nil
	}
	return &acct, nil
}

func (c *HTTPClient) GetSession(ctx context.Context) (*Session, error) {
	return c.snapshot(), nil
}

func (c *HTTPClient) OnAuthStateChange(fn func(event AuthEvent, session *Session)) func() {
	return c.events.subscribe(fn)
}

func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

// AccessToken returns the current bearer token, or "" when signed out. The
// record store borrows it for its own requests.
func (c *HTTPClient) AccessToken() string {
	if s := c.snapshot(); s != nil {
		return s.AccessToken
	}
	return ""
}

func (c *HTTPClient) setSession(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

// snapshot returns a copy of the held session so callers cannot mutate the
// client's state.
func (c *HTTPClient) snapshot() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	if c.session.Account != nil {
		a := *c.session.Account
		s.Account = &a
	}
	return &s
}

// authedDo performs a request with the current bearer token. An expired
// token is refreshed before the call; a 401 answer triggers one refresh and
// retry before the error is surfaced.
func (c *HTTPClient) authedDo(ctx context.Context, method, path string, body any) ([]byte, error) {
	sess := c.snapshot()
	if sess == nil {
		return nil, &Error{Message: "no active session", Status: http.StatusUnauthorized}
	}

	if sess.RefreshToken != "" && tokenExpired(sess.AccessToken) {
		if _, err := c.RefreshSession(ctx); err != nil {
			return nil, err
		}
		sess = c.snapshot()
	}

	data, err := c.do(ctx, method, path, body, sess.AccessToken)

	var perr *Error
	if errors.As(err, &perr) && perr.Status == http.StatusUnauthorized && sess.RefreshToken != "" {
		if _, rerr := c.RefreshSession(ctx); rerr != nil {
			return nil, err
		}
		sess = c.snapshot()
		return c.do(ctx, method, path, body, sess.AccessToken)
	}

	return data, err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, bearer string) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Message: fmt.Sprintf("encode request: %v", err)}
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	req.Header.Set("apikey", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: err.Error(), Status: resp.StatusCode}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.log.Debug(ctx, "provider call failed", "method", method, "path", path, "status", resp.StatusCode)
		return nil, decodeError(resp.StatusCode, data)
	}
	return data, nil
}

// tokenExpired reports whether the access token's exp claim has passed.
// The signature is not checked here; the server remains the authority and an
// unparseable token is simply sent as-is.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now().Add(expiryLeeway))
}

package session

import (
	"context"
	"errors"

	"github.com/boostfeed/go-client/internal/auth"
	"github.com/boostfeed/go-client/internal/models"
)

// The action helpers run one asynchronous service operation through its
// three-phase lifecycle: Started is dispatched before the call, Succeeded or
// Failed when it completes. The service result is also returned so the
// caller does not have to read it back out of the store.

func Login(ctx context.Context, st *Store, svc auth.Service, creds models.LoginCredentials) (*models.AuthToken, error) {
	st.Dispatch(LoginStarted{})

	token, err := svc.Login(ctx, creds)
	if err != nil {
		st.Dispatch(LoginFailed{Err: asAuthError(err, "Login failed")})
		return nil, err
	}

	st.Dispatch(LoginSucceeded{User: token.User})
	return token, nil
}

func Register(ctx context.Context, st *Store, svc auth.Service, creds models.RegisterCredentials) (*auth.RegisterResult, error) {
	st.Dispatch(RegisterStarted{})

	res, err := svc.Register(ctx, creds)
	if err != nil {
		st.Dispatch(RegisterFailed{Err: asAuthError(err, "Registration failed")})
		return nil, err
	}

	st.Dispatch(RegisterSucceeded{User: res.User})
	return res, nil
}

// SignOut revokes the remote session and, on success, resets the store. A
// provider failure leaves the state untouched so the caller can retry.
func SignOut(ctx context.Context, st *Store, svc auth.Service) error {
	if err := svc.Logout(ctx); err != nil {
		return err
	}
	st.Dispatch(Logout{})
	return nil
}

// asAuthError keeps the service's own error shape and falls back to the
// given message for anything else.
func asAuthError(err error, fallback string) *auth.Error {
	var ae *auth.Error
	if errors.As(err, &ae) {
		return ae
	}
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	return auth.NewError(msg)
}

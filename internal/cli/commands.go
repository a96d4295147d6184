package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/boostfeed/go-client/internal/auth"
	"github.com/boostfeed/go-client/internal/models"
	"github.com/boostfeed/go-client/internal/session"
)

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	displayName, err := GetSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	res, err := session.Register(ctx, a.store, a.svc, models.RegisterCredentials{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		fmt.Fprintf(a.out, "Registration failed: %s\n", err.Error())
		return err
	}

	if res.NeedsVerification {
		fmt.Fprintln(a.out, "Registered. Check your inbox for the verification link, then run 'verify'.")
	} else {
		fmt.Fprintln(a.out, "Registered and signed in.")
	}
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	token, err := session.Login(ctx, a.store, a.svc, models.LoginCredentials{
		Email:    email,
		Password: password,
	})
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %s\n", err.Error())
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", token.User.DisplayName)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := session.SignOut(ctx, a.store, a.svc); err != nil {
		fmt.Fprintf(a.out, "Logout failed: %s\n", err.Error())
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) Verify(ctx context.Context) error {
	token, err := GetSimpleText(a.reader, "Enter verification token", a.out)
	if err != nil {
		return err
	}

	verified, err := a.svc.VerifyEmail(ctx, token)
	if err != nil {
		fmt.Fprintf(a.out, "Verification failed: %s\n", err.Error())
		return err
	}
	if verified {
		fmt.Fprintln(a.out, "Email verified.")
	} else {
		fmt.Fprintln(a.out, "Token was already used or has expired.")
	}
	return nil
}

func (a *App) Resend(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	if err := a.svc.ResendVerification(ctx, email); err != nil {
		fmt.Fprintf(a.out, "Resend failed: %s\n", err.Error())
		return err
	}
	fmt.Fprintln(a.out, "Verification email sent.")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	user, err := a.svc.GetCurrentUser(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
		return err
	}
	if user == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> tier=%s boost=%t verified=%t\n",
		user.DisplayName, user.Email, user.SubscriptionTier, user.BoostModeEnabled, user.EmailVerified)
	return nil
}

// Boost tries the remote toggle first; while that capability is not built
// on the service, the flag is flipped in local session state only.
func (a *App) Boost(ctx context.Context) error {
	_, err := a.svc.ToggleBoostMode(ctx)
	if err != nil && !errors.Is(err, auth.ErrNotImplemented) {
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
		return err
	}
	if errors.Is(err, auth.ErrNotImplemented) {
		a.store.Dispatch(session.ToggleBoostMode{})
		fmt.Fprintf(a.out, "Boost mode %s (local only).\n", onOff(a.store.State().BoostModeEnabled))
	}
	return nil
}

// Tier behaves like Boost: remote first, local session state as fallback.
func (a *App) Tier(ctx context.Context) error {
	input, err := GetSimpleText(a.reader, "Enter tier (free|premium)", a.out)
	if err != nil {
		return err
	}
	tier := models.SubscriptionTier(input)
	if tier != models.TierFree && tier != models.TierPremium {
		fmt.Fprintln(a.out, "Tier must be 'free' or 'premium'.")
		return nil
	}

	err = a.svc.UpdateSubscriptionTier(ctx, tier)
	if err != nil && !errors.Is(err, auth.ErrNotImplemented) {
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
		return err
	}
	if errors.Is(err, auth.ErrNotImplemented) {
		a.store.Dispatch(session.SetSubscriptionTier{Tier: tier})
		fmt.Fprintf(a.out, "Subscription tier set to %s (local only).\n", tier)
	}
	return nil
}

func (a *App) ShowState(ctx context.Context) error {
	st := a.store.State()
	email := "-"
	if st.User != nil {
		email = st.User.Email
	}
	errMsg := "-"
	if st.Err != nil {
		errMsg = st.Err.Message
	}
	fmt.Fprintf(a.out, "user=%s authenticated=%t loading=%t boost=%t tier=%s error=%s\n",
		email, st.IsAuthenticated, st.IsLoading, st.BoostModeEnabled, st.SubscriptionTier, errMsg)
	return nil
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

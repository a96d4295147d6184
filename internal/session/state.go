// Package session holds the process-wide observable authentication state:
// one State record, a closed set of transition events, and a Store that
// serializes every mutation through a single dispatch path.
package session

import (
	"github.com/boostfeed/go-client/internal/auth"
	"github.com/boostfeed/go-client/internal/models"
)

// State is a snapshot of "who is logged in". IsAuthenticated is true iff
// User is non-nil; BoostModeEnabled and SubscriptionTier mirror the user's
// fields while one is set.
type State struct {
	User             *models.User
	IsLoading        bool
	IsAuthenticated  bool
	BoostModeEnabled bool
	SubscriptionTier models.SubscriptionTier
	Err              *auth.Error
}

func initialState() State {
	return State{SubscriptionTier: models.TierFree}
}

// clone detaches the snapshot from store-owned data.
func (s State) clone() State {
	s.User = s.User.Clone()
	return s
}

// Event is one element of the closed transition set. Transitions are applied
// by the pure reduce function; no event carries behavior of its own.
type Event interface {
	isEvent()
}

type (
	LoginStarted      struct{}
	LoginSucceeded    struct{ User models.User }
	LoginFailed       struct{ Err *auth.Error }
	RegisterStarted   struct{}
	RegisterSucceeded struct{ User models.User }
	RegisterFailed    struct{ Err *auth.Error }

	// SetUser replaces the current user (nil signs out the state without
	// resetting loading or tier fields).
	SetUser struct{ User *models.User }

	ToggleBoostMode     struct{}
	SetSubscriptionTier struct{ Tier models.SubscriptionTier }
	SetError            struct{ Err *auth.Error }
	ClearError          struct{}

	// Logout resets every field to its initial value atomically.
	Logout struct{}
)

func (LoginStarted) isEvent()        {}
func (LoginSucceeded) isEvent()      {}
func (LoginFailed) isEvent()         {}
func (RegisterStarted) isEvent()     {}
func (RegisterSucceeded) isEvent()   {}
func (RegisterFailed) isEvent()      {}
func (SetUser) isEvent()             {}
func (ToggleBoostMode) isEvent()     {}
func (SetSubscriptionTier) isEvent() {}
func (SetError) isEvent()            {}
func (ClearError) isEvent()          {}
func (Logout) isEvent()              {}

// reduce maps (state, event) to the next state. It performs no I/O and never
// mutates data reachable from the input state: users are cloned before any
// field is written.
func reduce(st State, ev Event) State {
	switch e := ev.(type) {
	case LoginStarted, RegisterStarted:
		st.IsLoading = true
		st.Err = nil

	case LoginSucceeded:
		u := e.User
		st.IsLoading = false
		st.User = &u
		st.IsAuthenticated = true
		st.Err = nil

	case RegisterSucceeded:
		u := e.User
		st.IsLoading = false
		st.User = &u
		st.IsAuthenticated = true
		st.Err = nil

	case LoginFailed:
		st.IsLoading = false
		st.Err = e.Err
		st.IsAuthenticated = false
		st.User = nil

	case RegisterFailed:
		st.IsLoading = false
		st.Err = e.Err
		st.IsAuthenticated = false
		st.User = nil

	case SetUser:
		st.User = e.User.Clone()
		st.IsAuthenticated = e.User != nil
		st.Err = nil
		if st.User != nil {
			st.BoostModeEnabled = st.User.BoostModeEnabled
			st.SubscriptionTier = st.User.SubscriptionTier
		}

	case ToggleBoostMode:
		st.BoostModeEnabled = !st.BoostModeEnabled
		if st.User != nil {
			u := st.User.Clone()
			u.BoostModeEnabled = st.BoostModeEnabled
			st.User = u
		}

	case SetSubscriptionTier:
		st.SubscriptionTier = e.Tier
		if st.User != nil {
			u := st.User.Clone()
			u.SubscriptionTier = e.Tier
			st.User = u
		}

	case SetError:
		st.Err = e.Err

	case ClearError:
		st.Err = nil

	case Logout:
		return initialState()
	}

	return st
}

// Package models defines the identity data types shared across the client:
// the user profile, session tokens, and transient credential inputs.
package models

import "time"

// SubscriptionTier is the user's billing tier.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

// User is the application-owned profile record, distinct from the identity
// provider's bare account. The JSON tags match the remote "users" table row
// shape, so the struct marshals directly for record-store reads and writes.
type User struct {
	ID                string           `json:"id"`
	Email             string           `json:"email"`
	DisplayName       string           `json:"display_name"`
	Bio               string           `json:"bio,omitempty"`
	ProfilePictureURL string           `json:"profile_picture_url,omitempty"`
	BoostModeEnabled  bool             `json:"boost_mode_enabled"`
	SubscriptionTier  SubscriptionTier `json:"subscription_tier"`
	EmailVerified     bool             `json:"email_verified"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Clone returns a copy of u, or nil for a nil receiver. The session store
// hands out and accepts clones so no caller can mutate shared state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

package models

// AuthToken pairs the provider-issued tokens with the authenticated user's
// profile for the duration of a login. Token strings are opaque pass-through
// values owned by the identity provider.
type AuthToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	User         User   `json:"user"`
}

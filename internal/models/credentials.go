package models

// Credential inputs exist only for the duration of one service call and are
// never persisted.

type LoginCredentials struct {
	Email    string
	Password string
}

type RegisterCredentials struct {
	Email       string
	Password    string
	DisplayName string
}

type ResetPasswordRequest struct {
	Email string
}

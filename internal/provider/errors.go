package provider

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrRecordNotFound is returned by Records when the keyed row does not exist.
var ErrRecordNotFound = errors.New("record not found")

// Error is the provider-native error shape: message, optional provider error
// code, HTTP status. It carries no user or token data.
type Error struct {
	Message string
	Code    string
	Status  int
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider: %s (%s)", e.Message, e.Code)
	}
	return "provider: " + e.Message
}

// wireError covers the error body variants the backend emits across its auth
// and rest endpoints.
type wireError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	ErrorField       string `json:"error"`
	ErrorCode        string `json:"error_code"`
	Code             any    `json:"code"`
}

// decodeError turns a non-2xx response body into an *Error. The body is
// optional; the HTTP status alone still produces a usable error.
func decodeError(status int, body []byte) *Error {
	e := &Error{Status: status}

	var w wireError
	if err := json.Unmarshal(body, &w); err == nil {
		switch {
		case w.Msg != "":
			e.Message = w.Msg
		case w.Message != "":
			e.Message = w.Message
		case w.ErrorDescription != "":
			e.Message = w.ErrorDescription
		case w.ErrorField != "":
			e.Message = w.ErrorField
		}
		if w.ErrorCode != "" {
			e.Code = w.ErrorCode
		} else if s, ok := w.Code.(string); ok {
			e.Code = s
		}
	}

	if e.Message == "" {
		e.Message = fmt.Sprintf("request failed with status %d", status)
	}
	return e
}

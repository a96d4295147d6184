// Package validation holds the pure credential checks applied before any
// network call. The rule order and messages are part of the client contract:
// the UI renders them verbatim and tests pin them.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail reports whether s has the shape local@domain.tld:
// no whitespace, exactly one "@", at least one "." in the domain part.
func ValidateEmail(s string) bool {
	return emailRe.MatchString(s)
}

// PasswordValidation is the accumulated result of ValidatePassword.
// IsValid is true iff Errors is empty.
type PasswordValidation struct {
	IsValid bool
	Errors  []string
}

// ValidatePassword checks every rule and accumulates all violations instead
// of short-circuiting. Order is fixed: length, lowercase, uppercase, digit.
func ValidatePassword(s string) PasswordValidation {
	var errs []string

	if len(s) < 8 {
		errs = append(errs, "Password must be at least 8 characters long")
	}
	if !strings.ContainsFunc(s, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !strings.ContainsFunc(s, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !strings.ContainsFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) {
		errs = append(errs, "Password must contain at least one number")
	}

	return PasswordValidation{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateDisplayName reports whether the trimmed name length is in [2, 50].
func ValidateDisplayName(s string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= 2 && n <= 50
}

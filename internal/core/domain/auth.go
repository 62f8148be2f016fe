package domain

import (
	"strings"
	"time"
)

// Credentials is the login form payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupCredentials is the signup form payload.
type SignupCredentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is what login and signup hand back to the UI. Remote failures
// are folded into Success/Message rather than returned as errors.
type AuthResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

// RecoveryResult is the outcome of a password recovery step.
type RecoveryResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SessionRecord is the persisted proof of authentication.
type SessionRecord struct {
	Token     string
	ExpiresAt time.Time
}

// DefaultSessionTTL is how long a session lives after login or signup.
const DefaultSessionTTL = 24 * time.Hour

// Storage keys. All three are removed together on clear.
const (
	KeyAuthToken        = "auth_token"
	KeySessionExpiresAt = "session_expires_at"
	KeyCurrentUser      = "current_user"
)

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName trims and collapses runs of whitespace to single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Normalize returns a copy with the email normalised. The password is never altered.
func (c Credentials) Normalize() Credentials {
	return Credentials{Email: NormalizeEmail(c.Email), Password: c.Password}
}

// Normalize returns a copy with name and email normalised.
func (c SignupCredentials) Normalize() SignupCredentials {
	return SignupCredentials{
		Name:     NormalizeName(c.Name),
		Email:    NormalizeEmail(c.Email),
		Password: c.Password,
	}
}

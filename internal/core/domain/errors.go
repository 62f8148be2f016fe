package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork            = errors.New("network error occurred")
	ErrSessionExpired     = errors.New("session expired")
	ErrValidation         = errors.New("validation failed")
	ErrKeyNotFound        = errors.New("key not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidOTP         = errors.New("invalid or expired code")
)

// APIError is a completed remote call whose response signals failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// User-facing messages.
const (
	MsgNetworkError   = "Network error occurred"
	MsgLoginFailed    = "Login failed"
	MsgSignupFailed   = "Signup failed"
	MsgForgotFailed   = "Failed to send reset code"
	MsgVerifyFailed   = "Invalid or expired code"
	MsgResetFailed    = "Failed to reset password"
	MsgPolicyRequired = "You must accept the privacy policy to continue"
)

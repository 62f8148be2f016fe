package ports

import (
	"context"

	"github.com/talentloop/portal/internal/core/domain"
)

// AuthGateway is the session-aware entry point the UI surfaces call.
type AuthGateway interface {
	Login(ctx context.Context, creds domain.Credentials) domain.AuthResult
	Signup(ctx context.Context, creds domain.SignupCredentials) domain.AuthResult
	GetCurrentUser(ctx context.Context) *domain.User
	Logout(ctx context.Context) error

	ForgotPassword(ctx context.Context, email string) domain.RecoveryResult
	VerifyOTP(ctx context.Context, email, otp string) domain.RecoveryResult
	ResetPassword(ctx context.Context, email, otp, password string) domain.RecoveryResult
}

package stubapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/infrastructure/session"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *MemoryAccountRepository, *Outbox, *fakeClock) {
	t.Helper()
	repo := NewMemoryAccountRepository()
	outbox := NewOutbox(zerolog.Nop())
	clock := &fakeClock{t: time.Now()}
	svc := NewService(repo, session.NewMemoryKV(), outbox, Options{
		JWTSecret: "secret",
		TokenTTL:  time.Hour,
		Clock:     clock.now,
		Logger:    zerolog.Nop(),
	})
	return svc, repo, outbox, clock
}

func claimsOf(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}); err != nil {
		t.Fatalf("parse token: %v", err)
	}
	return claims
}

func TestService_Signup_Success(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	token, user, err := svc.Signup(context.Background(), "  Ana  Lima ", " ANA@Example.com ", "pass1234")
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.Name != "Ana Lima" || user.Email != "ana@example.com" || user.ID == "" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !user.Roles.Empty() {
		t.Fatalf("new accounts must start without roles")
	}

	stored, err := repo.FindByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("account not stored: %v", err)
	}
	if stored.PasswordHash == "pass1234" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	if sub, _ := claimsOf(t, token).GetSubject(); sub != user.ID {
		t.Fatalf("token subject %q, want %q", sub, user.ID)
	}
}

func TestService_Signup_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "", "a@b.co", "pass1234"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty name, got %v", err)
	}
	if _, _, err := svc.Signup(ctx, "Ana", "a@b.co", "short"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for short password, got %v", err)
	}
}

func TestService_Signup_Duplicate(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "Ana", "ana@example.com", "pass1234"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, _, err := svc.Signup(ctx, "Ana", "ANA@example.com", "pass1234"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestService_Login(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	if _, _, err := svc.Signup(ctx, "Ana", "ana@example.com", "pass1234"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	token, err := svc.Login(ctx, "Ana@Example.com", "pass1234")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if claimsOf(t, token)["email"] != "ana@example.com" {
		t.Fatalf("unexpected claims")
	}

	if _, err := svc.Login(ctx, "ana@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "pass1234"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestService_SetRolesAndStage(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	_, user, err := svc.Signup(ctx, "Ana", "ana@example.com", "pass1234")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, _, err := svc.SetRoles(ctx, user.ID, []string{"admin"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown role, got %v", err)
	}

	token, updated, err := svc.SetRoles(ctx, user.ID, []string{domain.RoleClient})
	if err != nil {
		t.Fatalf("SetRoles: %v", err)
	}
	if !updated.Roles.Has(domain.RoleClient) {
		t.Fatalf("role not applied: %+v", updated)
	}
	if roles := domain.RolesFromAny(claimsOf(t, token)["roles"]); !roles.Has(domain.RoleClient) {
		t.Fatalf("token roles not refreshed: %v", roles)
	}

	staged, err := svc.SetStage(ctx, user.ID, "team_creation_step1")
	if err != nil {
		t.Fatalf("SetStage: %v", err)
	}
	if staged.OnboardingStage != "team_creation_step1" || !staged.Roles.Has(domain.RoleClient) {
		t.Fatalf("unexpected user after stage update: %+v", staged)
	}
}

func TestService_Logout_RevokesToken(t *testing.T) {
	svc, _, _, clock := newTestService(t)
	ctx := context.Background()
	token, _, err := svc.Signup(ctx, "Ana", "ana@example.com", "pass1234")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if svc.Revoked(token) {
		t.Fatalf("fresh token must not be revoked")
	}
	svc.Logout(token)
	if !svc.Revoked(token) {
		t.Fatalf("expected token revoked after logout")
	}

	clock.t = clock.t.Add(2 * time.Hour)
	if svc.Revoked(token) {
		t.Fatalf("revocation entry should be pruned after expiry")
	}
}

func TestService_PasswordRecovery(t *testing.T) {
	svc, _, outbox, clock := newTestService(t)
	ctx := context.Background()
	if _, _, err := svc.Signup(ctx, "Ana", "ana@example.com", "pass1234"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := svc.ForgotPassword(ctx, "ANA@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	mail, ok := outbox.Last("ana@example.com")
	if !ok || mail.Template != "password_reset" {
		t.Fatalf("expected reset mail, got %+v", outbox.Messages())
	}
	code, _ := mail.Data["code"].(string)
	if len(code) != otpDigits {
		t.Fatalf("unexpected code %q", code)
	}

	if err := svc.VerifyOTP(ctx, "ana@example.com", "not-it"); !errors.Is(err, domain.ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}
	if err := svc.VerifyOTP(ctx, "ana@example.com", code); err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if err := svc.ResetPassword(ctx, "ana@example.com", code, "newpass99"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := svc.Login(ctx, "ana@example.com", "newpass99"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	// the code is single use
	if err := svc.VerifyOTP(ctx, "ana@example.com", code); !errors.Is(err, domain.ErrInvalidOTP) {
		t.Fatalf("expected used code rejected, got %v", err)
	}

	// and expires
	if err := svc.ForgotPassword(ctx, "ana@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	mail, _ = outbox.Last("ana@example.com")
	clock.t = clock.t.Add(defaultOTPTTL + time.Second)
	if err := svc.VerifyOTP(ctx, "ana@example.com", mail.Data["code"].(string)); !errors.Is(err, domain.ErrInvalidOTP) {
		t.Fatalf("expected expired code rejected, got %v", err)
	}
}

func TestService_ForgotPassword_UnknownAccount(t *testing.T) {
	svc, _, outbox, _ := newTestService(t)

	if err := svc.ForgotPassword(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if len(outbox.Messages()) != 0 {
		t.Fatalf("no mail expected for unknown account")
	}
}

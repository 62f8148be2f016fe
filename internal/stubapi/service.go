package stubapi

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/core/ports"
)

const (
	minPasswordLength = 8
	otpDigits         = 6
	defaultOTPTTL     = 10 * time.Minute
	otpKeyPrefix      = "otp:"
)

// selectableRoles are the roles a user may pick on the role selection screen.
var selectableRoles = map[string]struct{}{
	domain.RoleClient: {},
	domain.RoleMember: {},
}

// Options configures a Service.
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	OTPTTL    time.Duration
	Clock     func() time.Time
	Logger    zerolog.Logger
}

// Service implements the hosted backend's account operations for local
// development: bcrypt passwords, HS256 tokens and emailed reset codes.
type Service struct {
	repo     ports.AccountRepository
	otps     ports.KeyValueStore
	outbox   *Outbox
	secret   string
	tokenTTL time.Duration
	otpTTL   time.Duration
	now      func() time.Time
	log      zerolog.Logger

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewService(repo ports.AccountRepository, otps ports.KeyValueStore, outbox *Outbox, opts Options) *Service {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = defaultOTPTTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{
		repo:     repo,
		otps:     otps,
		outbox:   outbox,
		secret:   opts.JWTSecret,
		tokenTTL: opts.TokenTTL,
		otpTTL:   opts.OTPTTL,
		now:      opts.Clock,
		log:      opts.Logger,
		revoked:  make(map[string]time.Time),
	}
}

// Signup creates an account without roles and returns a token for it.
func (s *Service) Signup(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	name = domain.NormalizeName(name)
	email = domain.NormalizeEmail(email)
	if name == "" || email == "" || len(password) < minPasswordLength {
		return "", nil, domain.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	created, err := s.repo.Create(ctx, &ports.Account{
		User:         domain.User{Name: name, Email: email, Roles: domain.RoleSet{}},
		PasswordHash: string(hash),
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(&created.User)
	if err != nil {
		return "", nil, err
	}
	return token, &created.User, nil
}

// Login checks the password and returns a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", domain.ErrInvalidCredentials
	}
	return s.generateToken(&account.User)
}

// User returns the account with the given id.
func (s *Service) User(ctx context.Context, id string) (*domain.User, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &account.User, nil
}

// SetRoles replaces the user's roles and issues a token carrying them.
func (s *Service) SetRoles(ctx context.Context, id string, roles []string) (string, *domain.User, error) {
	if len(roles) == 0 {
		return "", nil, domain.ErrValidation
	}
	for _, r := range roles {
		if _, ok := selectableRoles[r]; !ok {
			return "", nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, r)
		}
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", nil, err
	}
	account.Roles = domain.NewRoleSet(roles...)
	if err := s.repo.Update(ctx, account); err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(&account.User)
	if err != nil {
		return "", nil, err
	}
	return token, &account.User, nil
}

// SetStage records the onboarding wizard's progress.
func (s *Service) SetStage(ctx context.Context, id, stage string) (*domain.User, error) {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return nil, domain.ErrValidation
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	account.OnboardingStage = stage
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return &account.User, nil
}

// Logout revokes token until it would have expired anyway.
func (s *Service) Logout(token string) {
	exp := s.now().Add(s.tokenTTL)
	if claims, err := s.parse(token); err == nil {
		if e, err := claims.GetExpirationTime(); err == nil && e != nil {
			exp = e.Time
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = exp
}

// Revoked reports whether token was logged out. Expired entries are pruned.
func (s *Service) Revoked(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for t, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, t)
		}
	}
	_, ok := s.revoked[token]
	return ok
}

// ForgotPassword mails a reset code when the account exists. Unknown
// addresses succeed silently.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.ErrValidation
	}

	if _, err := s.repo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Debug().Str("email", email).Msg("reset requested for unknown account")
			return nil
		}
		return err
	}

	code, err := newOTP()
	if err != nil {
		return err
	}
	expiry := s.now().Add(s.otpTTL).UnixMilli()
	if err := s.otps.Set(ctx, otpKeyPrefix+email, code+"|"+strconv.FormatInt(expiry, 10)); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	s.outbox.Add(ports.EmailMessage{
		To:       email,
		Template: "password_reset",
		Data:     map[string]any{"code": code},
	})
	return nil
}

// VerifyOTP checks a reset code without consuming it.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) error {
	return s.checkOTP(ctx, domain.NormalizeEmail(email), otp)
}

// ResetPassword consumes a reset code and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, email, otp, password string) error {
	email = domain.NormalizeEmail(email)
	if len(password) < minPasswordLength {
		return domain.ErrValidation
	}
	if err := s.checkOTP(ctx, email, otp); err != nil {
		return err
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	account.PasswordHash = string(hash)
	if err := s.repo.Update(ctx, account); err != nil {
		return err
	}

	if err := s.otps.Delete(ctx, otpKeyPrefix+email); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("failed to drop used reset code")
	}
	return nil
}

// SendEmail accepts a transactional mail into the outbox.
func (s *Service) SendEmail(msg ports.EmailMessage) error {
	if strings.TrimSpace(msg.To) == "" || msg.Template == "" {
		return domain.ErrValidation
	}
	s.outbox.Add(msg)
	return nil
}

func (s *Service) checkOTP(ctx context.Context, email, otp string) error {
	stored, err := s.otps.Get(ctx, otpKeyPrefix+email)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return domain.ErrInvalidOTP
		}
		return err
	}

	code, expiry, ok := strings.Cut(stored, "|")
	if !ok || code != strings.TrimSpace(otp) {
		return domain.ErrInvalidOTP
	}
	ms, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil || s.now().After(time.UnixMilli(ms)) {
		return domain.ErrInvalidOTP
	}
	return nil
}

func (s *Service) generateToken(user *domain.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"roles": user.Roles.Names(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.secret))
}

func (s *Service) parse(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return claims, err
}

func newOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

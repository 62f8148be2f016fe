package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/core/ports"
	"github.com/talentloop/portal/internal/pkg/metrics"
)

// AuthGateway logs users in and out against the hosted backend and keeps the
// session store in step with what the backend says.
type AuthGateway struct {
	api     ports.AuthAPI
	session ports.SessionStore
	log     zerolog.Logger
}

// NewAuthGateway returns a gateway bound to one session store.
func NewAuthGateway(api ports.AuthAPI, session ports.SessionStore, log zerolog.Logger) *AuthGateway {
	return &AuthGateway{api: api, session: session, log: log}
}

// Login authenticates and then fills in the user record through the
// enrichment chain. A response counts as success when a token or a user can
// be read from it, whatever its status code.
func (g *AuthGateway) Login(ctx context.Context, creds domain.Credentials) domain.AuthResult {
	creds = creds.Normalize()

	resp, err := g.api.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		g.log.Warn().Err(err).Str("email", creds.Email).Msg("login request failed")
		metrics.AuthAttemptsTotal.WithLabelValues("login", "network_error").Inc()
		return domain.AuthResult{Message: domain.MsgNetworkError}
	}

	token, user, ok := g.accept(ctx, resp)
	if !ok {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "rejected").Inc()
		return domain.AuthResult{Message: extractMessage(resp.Body, domain.MsgLoginFailed)}
	}

	user = g.enrich(ctx, token, user)
	g.cache(ctx, token, user)

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return domain.AuthResult{Success: true, Token: token, User: user}
}

// Signup registers a new account. Unlike Login it returns the user exactly as
// the signup endpoint reported it, without the enrichment lookups.
func (g *AuthGateway) Signup(ctx context.Context, creds domain.SignupCredentials) domain.AuthResult {
	creds = creds.Normalize()

	resp, err := g.api.Signup(ctx, creds.Name, creds.Email, creds.Password)
	if err != nil {
		g.log.Warn().Err(err).Str("email", creds.Email).Msg("signup request failed")
		metrics.AuthAttemptsTotal.WithLabelValues("signup", "network_error").Inc()
		return domain.AuthResult{Message: domain.MsgNetworkError}
	}

	token, user, ok := g.accept(ctx, resp)
	if !ok {
		metrics.AuthAttemptsTotal.WithLabelValues("signup", "rejected").Inc()
		return domain.AuthResult{Message: extractMessage(resp.Body, domain.MsgSignupFailed)}
	}
	g.cache(ctx, token, user)

	metrics.AuthAttemptsTotal.WithLabelValues("signup", "success").Inc()
	return domain.AuthResult{Success: true, Token: token, User: user}
}

// accept reads token and user from an auth response and persists the token.
// A response without a token leaves no session behind: whatever session was
// stored before belongs to an earlier login.
func (g *AuthGateway) accept(ctx context.Context, resp *ports.APIResponse) (string, *domain.User, bool) {
	token, hasToken := extractToken(resp.Body)
	user, hasUser := extractUser(resp.Body)
	if !hasToken && !hasUser {
		return "", nil, false
	}
	if !resp.OK() {
		g.log.Debug().Int("status", resp.Status).Msg("accepting auth response with non-success status")
	}
	if !hasToken {
		if err := g.session.Clear(ctx); err != nil {
			g.log.Warn().Err(err).Msg("failed to clear previous session")
		}
		return "", user, true
	}
	if err := g.session.Persist(ctx, token); err != nil {
		g.log.Error().Err(err).Msg("failed to persist session")
	}
	return token, user, true
}

// GetCurrentUser returns the profile for the stored session, or nil when
// there is no usable session. A rejected token clears the session. When the
// profile endpoint is unreachable the cached user, if any, is returned.
func (g *AuthGateway) GetCurrentUser(ctx context.Context) *domain.User {
	if !g.session.IsActive(ctx) {
		if err := g.session.Clear(ctx); err != nil {
			g.log.Warn().Err(err).Msg("failed to clear inactive session")
		}
		return nil
	}

	token, _ := g.session.PeekToken(ctx)
	resp, err := g.api.Profile(ctx, token)
	if err != nil {
		g.log.Warn().Err(err).Msg("profile request failed")
		if cached, ok := g.session.CachedUser(ctx); ok {
			return cached
		}
		return nil
	}
	if !resp.OK() {
		g.log.Info().Int("status", resp.Status).Msg("profile rejected, clearing session")
		metrics.SessionsClearedTotal.WithLabelValues("rejected").Inc()
		if err := g.session.Clear(ctx); err != nil {
			g.log.Warn().Err(err).Msg("failed to clear rejected session")
		}
		return nil
	}

	user, ok := extractUser(resp.Body)
	if !ok {
		g.log.Warn().Msg("profile response carried no user")
		return nil
	}
	g.cache(ctx, token, user)
	return user
}

// Logout clears the local session. The backend is told on a best-effort basis.
func (g *AuthGateway) Logout(ctx context.Context) error {
	token, hasToken := g.session.PeekToken(ctx)
	if err := g.session.Clear(ctx); err != nil {
		return err
	}
	metrics.SessionsClearedTotal.WithLabelValues("logout").Inc()

	if hasToken {
		if _, err := g.api.Logout(ctx, token); err != nil {
			g.log.Debug().Err(err).Msg("backend logout failed")
		}
	}
	return nil
}

// cache stores user next to the session that token opened. Without a token
// there is no session to cache against.
func (g *AuthGateway) cache(ctx context.Context, token string, user *domain.User) {
	if token == "" || user == nil {
		return
	}
	if err := g.session.CacheUser(ctx, user); err != nil {
		g.log.Warn().Err(err).Msg("failed to cache user")
	}
}

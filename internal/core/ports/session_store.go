package ports

import (
	"context"

	"github.com/talentloop/portal/internal/core/domain"
)

// KeyValueStore is the persistent string storage a session lives in.
// Get returns domain.ErrKeyNotFound for absent keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// SessionStore persists one session token with its expiry.
type SessionStore interface {
	// Persist stores the token, sets the expiry to now + TTL and drops any
	// cached user left by an earlier session.
	Persist(ctx context.Context, token string) error
	// IsActive reports whether an unexpired token is stored. An expired or
	// missing expiry, or an expiry without a token, erases the session and
	// reports false.
	IsActive(ctx context.Context) bool
	// Clear removes the token, the expiry and the cached user.
	Clear(ctx context.Context) error
	// PeekToken returns the raw token without checking expiry.
	PeekToken(ctx context.Context) (string, bool)
	// CacheUser stores the read-through copy of the current profile.
	CacheUser(ctx context.Context, user *domain.User) error
	// CachedUser returns the copy stored by CacheUser, if any.
	CachedUser(ctx context.Context) (*domain.User, bool)
}

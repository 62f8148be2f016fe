package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/core/ports"
	"github.com/talentloop/portal/internal/pkg/metrics"
)

var _ ports.SessionStore = (*Store)(nil)

// Options configures a Store.
type Options struct {
	// TTL is the session lifetime. Defaults to domain.DefaultSessionTTL.
	TTL time.Duration
	// Namespace prefixes every key, so many sessions can share one backend.
	Namespace string
	// Clock returns the current time. Defaults to time.Now.
	Clock  func() time.Time
	Logger zerolog.Logger
}

// Store keeps one session (token, expiry, cached user) in a KeyValueStore.
// The expiry is stored as unix milliseconds.
type Store struct {
	kv  ports.KeyValueStore
	ttl time.Duration
	now func() time.Time
	log zerolog.Logger

	tokenKey  string
	expiryKey string
	userKey   string
}

// NewStore returns a session store over kv.
func NewStore(kv ports.KeyValueStore, opts Options) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	key := func(k string) string {
		if opts.Namespace == "" {
			return k
		}
		return opts.Namespace + ":" + k
	}
	return &Store{
		kv:        kv,
		ttl:       ttl,
		now:       clock,
		log:       opts.Logger,
		tokenKey:  key(domain.KeyAuthToken),
		expiryKey: key(domain.KeySessionExpiresAt),
		userKey:   key(domain.KeyCurrentUser),
	}
}

// Persist stores the token with a fresh expiry. Any cached user belongs to
// the previous session and is dropped. The expiry is written before the token
// so a token is never visible without one.
func (s *Store) Persist(ctx context.Context, token string) error {
	if err := s.kv.Delete(ctx, s.userKey); err != nil {
		return fmt.Errorf("drop cached user: %w", err)
	}
	expiresAt := s.now().Add(s.ttl)
	if err := s.kv.Set(ctx, s.expiryKey, strconv.FormatInt(expiresAt.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("persist session expiry: %w", err)
	}
	if err := s.kv.Set(ctx, s.tokenKey, token); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}
	return nil
}

// IsActive reports whether an unexpired token is stored. A token without a
// readable expiry, an expiry without a token and an expired session are all
// erased.
func (s *Store) IsActive(ctx context.Context) bool {
	rec, expiryStored, err := s.read(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("session read failed")
		return false
	}
	if rec.Token == "" && !expiryStored {
		return false
	}
	if rec.Token != "" && !rec.ExpiresAt.IsZero() && !s.now().After(rec.ExpiresAt) {
		return true
	}

	s.log.Debug().Bool("has_token", rec.Token != "").Msg("session expired or incomplete, erasing")
	metrics.SessionsClearedTotal.WithLabelValues("expired").Inc()
	if err := s.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to erase expired session")
	}
	return false
}

// read loads the stored record. ExpiresAt stays zero when the expiry key is
// absent or unparsable; expiryStored tells the two apart.
func (s *Store) read(ctx context.Context) (rec domain.SessionRecord, expiryStored bool, err error) {
	token, err := s.kv.Get(ctx, s.tokenKey)
	switch {
	case err == nil:
		rec.Token = token
	case !errors.Is(err, domain.ErrKeyNotFound):
		return rec, false, fmt.Errorf("read session token: %w", err)
	}

	raw, err := s.kv.Get(ctx, s.expiryKey)
	switch {
	case errors.Is(err, domain.ErrKeyNotFound):
		return rec, false, nil
	case err != nil:
		return rec, false, fmt.Errorf("read session expiry: %w", err)
	}
	if ms, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
		rec.ExpiresAt = time.UnixMilli(ms)
	}
	return rec, true, nil
}

// Clear removes the token, the expiry and the cached user together.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.tokenKey, s.expiryKey, s.userKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// PeekToken returns the raw token without checking expiry.
func (s *Store) PeekToken(ctx context.Context) (string, bool) {
	token, err := s.kv.Get(ctx, s.tokenKey)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// CacheUser stores user as the read-through copy of the profile.
func (s *Store) CacheUser(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode cached user: %w", err)
	}
	if err := s.kv.Set(ctx, s.userKey, string(data)); err != nil {
		return fmt.Errorf("cache user: %w", err)
	}
	return nil
}

// CachedUser returns the cached profile. It is a convenience copy; the
// profile endpoint stays authoritative.
func (s *Store) CachedUser(ctx context.Context) (*domain.User, bool) {
	raw, err := s.kv.Get(ctx, s.userKey)
	if err != nil {
		return nil, false
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.Warn().Err(err).Msg("cached user unreadable")
		return nil, false
	}
	return &user, true
}

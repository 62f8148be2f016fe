package api

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/talentloop/portal/internal/api/handler"
	"github.com/talentloop/portal/internal/core/ports"
	"github.com/talentloop/portal/internal/core/service"
	"github.com/talentloop/portal/internal/infrastructure/session"
)

// NewGatewayFactory gives every visitor a gateway over their own session,
// stored under "visitor:<id>" in the shared key-value backend.
func NewGatewayFactory(backend ports.AuthAPI, kv ports.KeyValueStore, ttl time.Duration, log zerolog.Logger) handler.GatewayFactory {
	return func(visitorID string) ports.AuthGateway {
		vlog := log.With().Str("visitor_id", visitorID).Logger()
		store := session.NewStore(kv, session.Options{
			TTL:       ttl,
			Namespace: "visitor:" + visitorID,
			Logger:    vlog,
		})
		return service.NewAuthGateway(backend, store, vlog)
	}
}

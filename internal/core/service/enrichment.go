package service

import (
	"context"

	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/pkg/metrics"
)

// enrichStage is how much of the user record the login chain has so far.
type enrichStage int

const (
	stageNoIdentity enrichStage = iota
	stageHasID
	stageComplete
)

// enrich walks the lookup chain after login: who-am-i when the id is
// unknown, then the user detail endpoint. Both calls are authorized with the
// token the login just returned; without one the chain is skipped. The detail
// response replaces the working user entirely. Failures are logged and leave
// the user as it was.
func (g *AuthGateway) enrich(ctx context.Context, token string, user *domain.User) *domain.User {
	if token == "" {
		return user
	}
	id := ""
	stage := stageNoIdentity
	if user != nil && user.ID != "" {
		id = user.ID
		stage = stageHasID
	}

	for stage != stageComplete {
		switch stage {
		case stageNoIdentity:
			var ok bool
			if id, ok = g.lookupIdentity(ctx, token); !ok {
				return user
			}
			stage = stageHasID
		case stageHasID:
			if full, ok := g.lookupUser(ctx, token, id); ok {
				user = full
			}
			stage = stageComplete
		}
	}
	return user
}

func (g *AuthGateway) lookupIdentity(ctx context.Context, token string) (string, bool) {
	resp, err := g.api.WhoAmI(ctx, token)
	if err != nil {
		g.log.Warn().Err(err).Msg("who-am-i lookup failed")
		metrics.EnrichmentStepsTotal.WithLabelValues("who_am_i", "error").Inc()
		return "", false
	}
	if !resp.OK() {
		g.log.Warn().Int("status", resp.Status).Msg("who-am-i lookup rejected")
		metrics.EnrichmentStepsTotal.WithLabelValues("who_am_i", "rejected").Inc()
		return "", false
	}

	id, ok := extractUserID(resp.Body)
	if !ok {
		g.log.Warn().Msg("who-am-i response carried no id")
		metrics.EnrichmentStepsTotal.WithLabelValues("who_am_i", "missing_id").Inc()
		return "", false
	}
	metrics.EnrichmentStepsTotal.WithLabelValues("who_am_i", "ok").Inc()
	return id, true
}

func (g *AuthGateway) lookupUser(ctx context.Context, token, id string) (*domain.User, bool) {
	resp, err := g.api.UserByID(ctx, token, id)
	if err != nil {
		g.log.Warn().Err(err).Str("user_id", id).Msg("user detail lookup failed")
		metrics.EnrichmentStepsTotal.WithLabelValues("user_detail", "error").Inc()
		return nil, false
	}
	if !resp.OK() {
		g.log.Warn().Int("status", resp.Status).Str("user_id", id).Msg("user detail lookup rejected")
		metrics.EnrichmentStepsTotal.WithLabelValues("user_detail", "rejected").Inc()
		return nil, false
	}

	user, ok := extractUser(resp.Body)
	if !ok {
		g.log.Warn().Str("user_id", id).Msg("user detail response carried no user")
		metrics.EnrichmentStepsTotal.WithLabelValues("user_detail", "unparsable").Inc()
		return nil, false
	}
	metrics.EnrichmentStepsTotal.WithLabelValues("user_detail", "ok").Inc()
	return user, true
}

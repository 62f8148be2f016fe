package service

import (
	"strconv"
	"strings"

	"github.com/talentloop/portal/internal/core/domain"
)

// Backends disagree on where they put the token and the user. Each list is
// tried in order; the first hit wins. A new response variant is one line here.
var tokenPaths = [][]string{
	{"token"},
	{"authToken"},
	{"jwt"},
	{"access_token"},
	{"accessToken"},
	{"data", "token"},
	{"data", "access_token"},
}

type userShape struct {
	path []string
	// identity requires an id or email at this path, so that envelopes such
	// as {"token": "..."} are not mistaken for a user.
	identity bool
}

var userShapes = []userShape{
	{path: []string{"user"}},
	{path: []string{"data", "user"}},
	{path: []string{"data"}, identity: true},
	{path: []string{"profile"}},
	{path: nil, identity: true},
}

var (
	idKeys      = []string{"id", "_id", "userId", "user_id", "sub"}
	nameKeys    = []string{"name", "fullName", "full_name", "username"}
	stageKeys   = []string{"onboarding_stage", "onboardingStage", "stage"}
	roleKeys    = []string{"roles", "role"}
	messageKeys = []string{"message", "error"}
)

func lookup(body map[string]any, path []string) (any, bool) {
	var cur any = body
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

func extractToken(body map[string]any) (string, bool) {
	for _, path := range tokenPaths {
		v, ok := lookup(body, path)
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func extractUser(body map[string]any) (*domain.User, bool) {
	for _, shape := range userShapes {
		v, ok := lookup(body, shape.path)
		if !ok {
			continue
		}
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		user := decodeUser(m)
		if shape.identity && user.ID == "" && user.Email == "" {
			continue
		}
		return user, true
	}
	return nil, false
}

// extractUserID reads the identity returned by the who-am-i endpoint.
func extractUserID(body map[string]any) (string, bool) {
	if user, ok := extractUser(body); ok && user.ID != "" {
		return user.ID, true
	}
	id := firstString(body, idKeys)
	return id, id != ""
}

// extractMessage returns the body's message or error text, else fallback.
func extractMessage(body map[string]any, fallback string) string {
	for _, key := range messageKeys {
		switch v := body[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if s, ok := v["message"].(string); ok && s != "" {
				return s
			}
		}
	}
	return fallback
}

func decodeUser(m map[string]any) *domain.User {
	user := &domain.User{
		ID:              firstString(m, idKeys),
		Name:            firstString(m, nameKeys),
		Email:           firstString(m, []string{"email"}),
		OnboardingStage: firstString(m, stageKeys),
		Roles:           domain.RoleSet{},
	}
	for _, key := range roleKeys {
		if v, ok := m[key]; ok && v != nil {
			user.Roles = domain.RolesFromAny(v)
			break
		}
	}
	return user
}

func firstString(m map[string]any, keys []string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

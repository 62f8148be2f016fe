package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

const (
	RoleClient = "client"
	RoleMember = "member"
)

// RoleSet is the membership view of a user's roles.
type RoleSet map[string]struct{}

// NewRoleSet builds a set from role names, dropping blanks.
func NewRoleSet(roles ...string) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(role string) bool {
	_, ok := s[role]
	return ok
}

func (s RoleSet) Empty() bool { return len(s) == 0 }

// Names returns the roles in sorted order.
func (s RoleSet) Names() []string {
	names := make([]string, 0, len(s))
	for r := range s {
		names = append(names, r)
	}
	sort.Strings(names)
	return names
}

func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// UnmarshalJSON accepts a list of strings, a list of {"name"} objects or a
// single comma separated string.
func (s *RoleSet) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = RolesFromAny(raw)
	return nil
}

// RolesFromAny normalises the role shapes seen on the wire into a RoleSet.
func RolesFromAny(v any) RoleSet {
	switch t := v.(type) {
	case nil:
		return RoleSet{}
	case string:
		return NewRoleSet(strings.Split(t, ",")...)
	case []string:
		return NewRoleSet(t...)
	case []any:
		names := make([]string, 0, len(t))
		for _, item := range t {
			switch it := item.(type) {
			case string:
				names = append(names, it)
			case map[string]any:
				for _, key := range []string{"name", "role", "slug"} {
					if n, ok := it[key].(string); ok {
						names = append(names, n)
						break
					}
				}
			}
		}
		return NewRoleSet(names...)
	default:
		return RoleSet{}
	}
}

// User is the client-side view of the remote account. Only the profile
// endpoint is authoritative; cached copies may lag.
type User struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Roles           RoleSet `json:"roles"`
	OnboardingStage string  `json:"onboarding_stage,omitempty"`
}

// Onboarding stage values and prefixes reported by the backend.
const (
	StageOrganisationCreation = "organisation_creation"
	StageTeamCreationPrefix   = "team_creation"
	StageJobCreationPrefix    = "job_creation"
	StageCompleted            = "completed"
	StageComplete             = "complete"
)

package service

import (
	"strings"

	"github.com/talentloop/portal/internal/core/domain"
)

type stageRule struct {
	match  func(stage string) bool
	phase  domain.Phase
	target domain.Target
}

func equals(want string) func(string) bool {
	return func(stage string) bool { return stage == want }
}

func hasPrefix(prefix string) func(string) bool {
	return func(stage string) bool { return strings.HasPrefix(stage, prefix) }
}

// stageRules is evaluated top to bottom for client users; first match wins.
// Stages not listed fall through to onboarding, where the wizard works out
// the step from the stage string itself.
var stageRules = []stageRule{
	{match: equals(""), phase: domain.PhaseOrganisation, target: domain.TargetOnboarding},
	{match: equals(domain.StageOrganisationCreation), phase: domain.PhaseOrganisation, target: domain.TargetOnboarding},
	{match: hasPrefix(domain.StageTeamCreationPrefix), phase: domain.PhaseTeam, target: domain.TargetOnboarding},
	{match: hasPrefix(domain.StageJobCreationPrefix), phase: domain.PhaseJob, target: domain.TargetOnboarding},
	{match: equals(domain.StageCompleted), phase: domain.PhaseCompleted, target: domain.TargetDashboard},
	{match: equals(domain.StageComplete), phase: domain.PhaseCompleted, target: domain.TargetDashboard},
}

var unknownStage = stageRule{phase: domain.PhaseUnknown, target: domain.TargetOnboarding}

// Decide picks the area a user lands in after authentication. It is total:
// a nil user or one without roles goes to role selection.
func Decide(user *domain.User) domain.Target {
	if user == nil || user.Roles.Empty() {
		return domain.TargetRoleSelection
	}
	if !user.Roles.Has(domain.RoleClient) {
		return domain.TargetDashboard
	}
	return ruleFor(user.OnboardingStage).target
}

// StagePhase groups an onboarding stage string into its wizard phase.
func StagePhase(stage string) domain.Phase {
	return ruleFor(stage).phase
}

func ruleFor(stage string) stageRule {
	for _, r := range stageRules {
		if r.match(stage) {
			return r
		}
	}
	return unknownStage
}

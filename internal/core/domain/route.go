package domain

// Target is the application area a user is sent to after authentication.
type Target string

const (
	TargetRoleSelection Target = "role-selection"
	TargetDashboard     Target = "dashboard"
	TargetOnboarding    Target = "onboarding"
)

// Phase is the coarse onboarding step derived from a stage string.
type Phase string

const (
	PhaseOrganisation Phase = "organisation"
	PhaseTeam         Phase = "team"
	PhaseJob          Phase = "job"
	PhaseCompleted    Phase = "completed"
	PhaseUnknown      Phase = "unknown"
)

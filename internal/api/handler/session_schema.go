package handler

import "github.com/talentloop/portal/internal/core/domain"

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	AcceptPolicy    bool   `json:"accept_policy"`
}

// sessionResponse is returned by login, signup and me. The token stays on
// the server side of the session.
type sessionResponse struct {
	Success bool          `json:"success"`
	User    *domain.User  `json:"user,omitempty"`
	Target  domain.Target `json:"target,omitempty"`
	Message string        `json:"message,omitempty"`
}

type routeResponse struct {
	Authenticated bool          `json:"authenticated"`
	Target        domain.Target `json:"target"`
	Phase         domain.Phase  `json:"phase,omitempty"`
}

type validateRequest struct {
	Values       map[string]string `json:"values"`
	Touched      map[string]bool   `json:"touched"`
	Submit       bool              `json:"submit"`
	AcceptPolicy bool              `json:"accept_policy"`
}

type validateResponse struct {
	OK      bool                    `json:"ok"`
	Errors  domain.ValidationErrors `json:"errors"`
	Message string                  `json:"message,omitempty"`
}

type strengthRequest struct {
	Password string `json:"password"`
}

type forgotRequest struct {
	Email string `json:"email" validate:"required"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

type resetRequest struct {
	Email           string `json:"email" validate:"required"`
	OTP             string `json:"otp" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talentloop/portal/internal/core/service"
)

// SignupHandler serves the signup form's live checks. It holds no session state.
type SignupHandler struct{}

func NewSignupHandler() *SignupHandler {
	return &SignupHandler{}
}

// Validate revalidates a form snapshot. Without submit only touched fields
// report errors; with submit every field is checked and the privacy policy
// must be accepted.
//
// @Summary      Validate signup form
// @Tags         signup
// @Accept       json
// @Produce      json
// @Param        body  body      validateRequest  true  "Form snapshot"
// @Success      200   {object}  validateResponse
// @Failure      400   {object}  map[string]string
// @Router       /signup/validate [post]
func (h *SignupHandler) Validate(c echo.Context) error {
	var req validateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	form := service.RestoreSignupForm(req.Values, req.Touched)
	if req.Submit {
		return c.JSON(http.StatusOK, validateResponse(form.Submit(req.AcceptPolicy)))
	}

	visible := form.VisibleErrors()
	return c.JSON(http.StatusOK, validateResponse{
		OK:     !form.Errors().HasErrors(),
		Errors: visible,
	})
}

// PasswordStrength scores a candidate password for the strength meter.
//
// @Summary      Password strength
// @Tags         signup
// @Accept       json
// @Produce      json
// @Param        body  body      strengthRequest  true  "Candidate password"
// @Success      200   {object}  domain.PasswordStrength
// @Failure      400   {object}  map[string]string
// @Router       /signup/password-strength [post]
func (h *SignupHandler) PasswordStrength(c echo.Context) error {
	var req strengthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	return c.JSON(http.StatusOK, service.EvaluatePassword(req.Password))
}

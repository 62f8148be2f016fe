package stubapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talentloop/portal/internal/api/middleware"
	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/core/ports"
)

// Handler exposes Service over the JSON API the portal's remote client
// speaks. Response shapes deliberately differ between endpoints, as they do
// on the hosted backend.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type rolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1"`
}

type stageRequest struct {
	Stage string `json:"stage" validate:"required"`
}

type forgotRequest struct {
	Email string `json:"email" validate:"required"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

type resetRequest struct {
	Email       string `json:"email" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type emailRequest struct {
	To       string         `json:"to" validate:"required,email"`
	Template string         `json:"template" validate:"required"`
	Data     map[string]any `json:"data"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user,omitempty"`
}

type flagResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

// Signup answers {"token", "user"}.
func (h *Handler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	token, user, err := h.svc.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tokenResponse{Token: token, User: user})
}

// Login answers with the token only; clients look the user up afterwards.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	token, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) Logout(c echo.Context) error {
	token, _ := c.Get(middleware.TokenKey).(string)
	h.svc.Logout(token)
	return c.JSON(http.StatusOK, flagResponse{Success: true})
}

// Me answers with the caller's account as a flat object.
func (h *Handler) Me(c echo.Context) error {
	user, err := h.svc.User(c.Request().Context(), callerID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// User answers {"data": {"user": ...}}. Callers may only read themselves.
func (h *Handler) User(c echo.Context) error {
	id, err := self(c)
	if err != nil {
		return err
	}
	user, err := h.svc.User(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"data": map[string]any{"user": user}})
}

// SetRoles answers with a fresh token carrying the new roles.
func (h *Handler) SetRoles(c echo.Context) error {
	id, err := self(c)
	if err != nil {
		return err
	}
	var req rolesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	token, user, err := h.svc.SetRoles(c.Request().Context(), id, req.Roles)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: token, User: user})
}

func (h *Handler) SetStage(c echo.Context) error {
	id, err := self(c)
	if err != nil {
		return err
	}
	var req stageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.svc.SetStage(c.Request().Context(), id, req.Stage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var req forgotRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, flagResponse{Success: true, Message: "If the account exists, a reset code has been sent"})
}

func (h *Handler) VerifyOTP(c echo.Context) error {
	var req verifyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.svc.VerifyOTP(c.Request().Context(), req.Email, req.OTP); err != nil {
		if errors.Is(err, domain.ErrInvalidOTP) {
			return c.JSON(http.StatusBadRequest, flagResponse{Message: domain.MsgVerifyFailed})
		}
		return err
	}
	return c.JSON(http.StatusOK, flagResponse{Success: true})
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var req resetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.svc.ResetPassword(c.Request().Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrInvalidOTP) {
			return c.JSON(http.StatusBadRequest, flagResponse{Message: domain.MsgVerifyFailed})
		}
		return err
	}
	return c.JSON(http.StatusOK, flagResponse{Success: true, Message: "Password updated"})
}

func (h *Handler) SendEmail(c echo.Context) error {
	var req emailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.svc.SendEmail(ports.EmailMessage{To: req.To, Template: req.Template, Data: req.Data}); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, map[string]bool{"queued": true})
}

func callerID(c echo.Context) string {
	id, _ := c.Get(middleware.UserIDKey).(string)
	return id
}

// self returns the :id path parameter when it names the caller.
func self(c echo.Context) (string, error) {
	id := c.Param("id")
	if id == "" || id != callerID(c) {
		return "", domain.ErrForbidden
	}
	return id, nil
}

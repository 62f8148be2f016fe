package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/core/ports"
	"github.com/talentloop/portal/internal/core/service"
	"github.com/talentloop/portal/internal/pkg/metrics"
)

// MailQueue accepts transactional mails for asynchronous delivery.
type MailQueue interface {
	Enqueue(msg ports.EmailMessage) error
}

type SessionHandler struct {
	gateways GatewayFactory
	mail     MailQueue
	welcome  func(name, email string) ports.EmailMessage
	log      zerolog.Logger
}

func NewSessionHandler(gateways GatewayFactory, mail MailQueue, welcome func(name, email string) ports.EmailMessage, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{gateways: gateways, mail: mail, welcome: welcome, log: log}
}

// Login authenticates the visitor and opens a session.
//
// @Summary      Log in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  sessionResponse
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	gw, err := gateway(c, h.gateways)
	if err != nil {
		return err
	}

	res := gw.Login(c.Request().Context(), domain.Credentials{Email: req.Email, Password: req.Password})
	if !res.Success {
		return c.JSON(http.StatusUnauthorized, sessionResponse{Message: res.Message})
	}
	return c.JSON(http.StatusOK, h.authenticated(res.User))
}

// Signup validates the form, registers the account and opens a session.
//
// @Summary      Sign up
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Signup form"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  sessionResponse
// @Failure      422   {object}  validateResponse
// @Router       /session/signup [post]
func (h *SessionHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	form := service.RestoreSignupForm(map[string]string{
		domain.FieldName:            req.Name,
		domain.FieldEmail:           req.Email,
		domain.FieldPassword:        req.Password,
		domain.FieldConfirmPassword: req.ConfirmPassword,
	}, nil)
	if check := form.Submit(req.AcceptPolicy); !check.OK {
		return c.JSON(http.StatusUnprocessableEntity, validateResponse(check))
	}

	gw, err := gateway(c, h.gateways)
	if err != nil {
		return err
	}

	creds := form.Credentials()
	res := gw.Signup(c.Request().Context(), creds)
	if !res.Success {
		return c.JSON(http.StatusBadRequest, sessionResponse{Message: res.Message})
	}

	if h.mail != nil && h.welcome != nil {
		creds = creds.Normalize()
		if err := h.mail.Enqueue(h.welcome(creds.Name, creds.Email)); err != nil {
			h.log.Warn().Err(err).Str("email", creds.Email).Msg("welcome mail not queued")
		}
	}
	return c.JSON(http.StatusCreated, h.authenticated(res.User))
}

// Logout ends the visitor's session.
//
// @Summary      Log out
// @Tags         session
// @Success      204
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	gw, err := gateway(c, h.gateways)
	if err != nil {
		return err
	}
	if err := gw.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the profile of the signed-in visitor.
//
// @Summary      Current user
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /session/me [get]
func (h *SessionHandler) Me(c echo.Context) error {
	gw, err := gateway(c, h.gateways)
	if err != nil {
		return err
	}
	user := gw.GetCurrentUser(c.Request().Context())
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}
	return c.JSON(http.StatusOK, h.authenticated(user))
}

// Route tells the UI where the visitor belongs right now.
//
// @Summary      Landing area
// @Tags         session
// @Produce      json
// @Success      200  {object}  routeResponse
// @Router       /session/route [get]
func (h *SessionHandler) Route(c echo.Context) error {
	gw, err := gateway(c, h.gateways)
	if err != nil {
		return err
	}
	user := gw.GetCurrentUser(c.Request().Context())
	if user == nil {
		return c.JSON(http.StatusOK, routeResponse{Target: domain.TargetRoleSelection})
	}

	resp := routeResponse{Authenticated: true, Target: decide(user)}
	if resp.Target == domain.TargetOnboarding {
		resp.Phase = service.StagePhase(user.OnboardingStage)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) authenticated(user *domain.User) sessionResponse {
	return sessionResponse{Success: true, User: user, Target: decide(user)}
}

func decide(user *domain.User) domain.Target {
	target := service.Decide(user)
	metrics.RouteDecisionsTotal.WithLabelValues(string(target)).Inc()
	return target
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talentloop/portal/internal/core/domain"
)

type RecoveryHandler struct {
	gateways GatewayFactory
}

func NewRecoveryHandler(gateways GatewayFactory) *RecoveryHandler {
	return &RecoveryHandler{gateways: gateways}
}

// Forgot asks the backend to mail a reset code.
//
// @Summary      Request reset code
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      forgotRequest  true  "Account email"
// @Success      200   {object}  domain.RecoveryResult
// @Failure      400   {object}  domain.RecoveryResult
// @Router       /password/forgot [post]
func (h *RecoveryHandler) Forgot(c echo.Context) error {
	var req forgotRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	gw, err := gateway(c, h.gateways)
	if err != nil {
		return err
	}
	return recoveryJSON(c, gw.ForgotPassword(c.Request().Context(), req.Email))
}

// Verify checks a reset code.
//
// @Summary      Verify reset code
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      verifyRequest  true  "Email and code"
// @Success      200   {object}  domain.RecoveryResult
// @Failure      400   {object}  domain.RecoveryResult
// @Router       /password/verify [post]
func (h *RecoveryHandler) Verify(c echo.Context) error {
	var req verifyRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	gw, err := gateway(c, h.gateways)
	if err != nil {
		return err
	}
	return recoveryJSON(c, gw.VerifyOTP(c.Request().Context(), req.Email, req.OTP))
}

// Reset sets a new password using a verified code.
//
// @Summary      Reset password
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      resetRequest  true  "Email, code and new password"
// @Success      200   {object}  domain.RecoveryResult
// @Failure      400   {object}  domain.RecoveryResult
// @Router       /password/reset [post]
func (h *RecoveryHandler) Reset(c echo.Context) error {
	var req resetRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	gw, err := gateway(c, h.gateways)
	if err != nil {
		return err
	}
	return recoveryJSON(c, gw.ResetPassword(c.Request().Context(), req.Email, req.OTP, req.Password))
}

func (h *RecoveryHandler) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

func recoveryJSON(c echo.Context, res domain.RecoveryResult) error {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	return c.JSON(status, res)
}

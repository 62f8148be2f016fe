package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talentloop/portal/internal/api/middleware"
	"github.com/talentloop/portal/internal/core/ports"
)

// GatewayFactory returns the auth gateway bound to one visitor's session.
type GatewayFactory func(visitorID string) ports.AuthGateway

// gateway resolves the gateway for the visitor set by the Visitor
// middleware. A missing id means the middleware did not run.
func gateway(c echo.Context, gateways GatewayFactory) (ports.AuthGateway, error) {
	id, _ := c.Get(middleware.VisitorKey).(string)
	if id == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "missing visitor identity")
	}
	return gateways(id), nil
}

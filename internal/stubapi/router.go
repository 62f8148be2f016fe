package stubapi

import (
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/talentloop/portal/internal/api"
	"github.com/talentloop/portal/internal/api/handler"
	"github.com/talentloop/portal/internal/api/middleware"
	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/pkg/validation"
)

var httpMetrics = sync.OnceValue(func() echo.MiddlewareFunc {
	return echoprometheus.NewMiddleware("stub_http")
})

// NewRouter builds the development backend. Probes feed /health/ready.
func NewRouter(svc *Service, jwtSecret string, probes map[string]handler.Pinger, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(httpMetrics())

	h := NewHandler(svc)
	auth := middleware.Auth(jwtSecret, svc)

	// --- Public auth routes ---
	e.POST("/auth/signup", h.Signup)
	e.POST("/auth/login", h.Login)
	e.POST("/auth/forgot-password", h.ForgotPassword)
	e.POST("/auth/verify-otp", h.VerifyOTP)
	e.POST("/auth/reset-password", h.ResetPassword)
	e.POST("/email/send", h.SendEmail)

	// --- Authenticated routes ---
	e.POST("/auth/logout", h.Logout, auth)
	e.GET("/auth/me", h.Me, auth)

	u := e.Group("/user", auth)
	u.GET("/:id", h.User)
	u.POST("/:id/roles", h.SetRoles)
	u.PUT("/:id/onboarding-stage", h.SetStage, middleware.RBAC(domain.RoleClient))

	// --- Health probes ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(probes).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

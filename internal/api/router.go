package api

import (
	"net/http"
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"

	_ "github.com/talentloop/portal/docs"
	"github.com/talentloop/portal/internal/api/handler"
	"github.com/talentloop/portal/internal/api/middleware"
	"github.com/talentloop/portal/internal/core/ports"
	"github.com/talentloop/portal/internal/pkg/validation"
)

// httpMetrics registers the request collectors once per process.
var httpMetrics = sync.OnceValue(func() echo.MiddlewareFunc {
	return echoprometheus.NewMiddleware("portal_http")
})

// Dependencies are the collaborators the portal routes need.
type Dependencies struct {
	Gateways handler.GatewayFactory
	Mail     handler.MailQueue
	// Welcome builds the mail queued after signup.
	Welcome func(name, email string) ports.EmailMessage
	// Probes are checked by the readiness endpoint, keyed by name.
	Probes map[string]handler.Pinger

	Visitor middleware.VisitorOptions
	Log     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(httpMetrics())

	// --- Handlers ---
	sessionHandler := handler.NewSessionHandler(deps.Gateways, deps.Mail, deps.Welcome, deps.Log)
	signupHandler := handler.NewSignupHandler()
	recoveryHandler := handler.NewRecoveryHandler(deps.Gateways)

	visitor := middleware.Visitor(deps.Visitor)

	// --- Session routes ---
	s := e.Group("/session", visitor)
	s.POST("/login", sessionHandler.Login)
	s.POST("/signup", sessionHandler.Signup)
	s.POST("/logout", sessionHandler.Logout)
	s.GET("/me", sessionHandler.Me)
	s.GET("/route", sessionHandler.Route)

	// --- Signup form checks (stateless) ---
	e.POST("/signup/validate", signupHandler.Validate)
	e.POST("/signup/password-strength", signupHandler.PasswordStrength)

	// --- Password recovery ---
	p := e.Group("/password", visitor)
	p.POST("/forgot", recoveryHandler.Forgot)
	p.POST("/verify", recoveryHandler.Verify)
	p.POST("/reset", recoveryHandler.Reset)

	// --- Health probes (no visitor required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Probes)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", openAPI)

	return e
}

func openAPI(c echo.Context) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, []byte(doc))
}

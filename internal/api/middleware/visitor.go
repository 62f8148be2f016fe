package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// VisitorKey is the echo context key holding the visitor id.
const VisitorKey = "visitor_id"

const visitorCookieMaxAge = 365 * 24 * time.Hour

// VisitorOptions configures the Visitor middleware.
type VisitorOptions struct {
	CookieName string
	// Secure marks the cookie HTTPS-only.
	Secure bool
}

// Visitor identifies the browser behind a request with a random id kept in
// an HttpOnly cookie. The id namespaces the visitor's session storage. A
// missing or malformed cookie gets a fresh id.
func Visitor(opts VisitorOptions) echo.MiddlewareFunc {
	name := opts.CookieName
	if name == "" {
		name = "portal_visitor"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(name); err == nil {
				if parsed, err := uuid.Parse(ck.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     name,
					Value:    id,
					Path:     "/",
					MaxAge:   int(visitorCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(VisitorKey, id)
			return next(c)
		}
	}
}

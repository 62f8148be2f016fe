package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talentloop/portal/internal/core/domain"
)

// RBAC lets the request through when the token carries any of allowedRoles.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get(RolesKey).(domain.RoleSet)
			for _, r := range allowedRoles {
				if roles.Has(r) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}

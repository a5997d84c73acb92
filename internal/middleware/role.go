package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole gates a route on an arbitrary role set. An anonymous
// request gets 401; an authenticated principal holding none of the roles
// gets 403 with the missing requirement named. Role names are bare
// (ADMIN, not ROLE_ADMIN).
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			if !p.HasAnyRole(roles...) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient role", "required": roles})
			}
			return next(c)
		}
	}
}

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns middleware that enforces that the authenticated user
// holds one of the given roles, as carried in the JWT's "role" claim and
// extracted into the context by JWTAuth.  Requests with a missing or
// disallowed role are rejected with 403.  This is the transport-level gate;
// handlers still consult the authorization guard before mutating, so a
// route misconfiguration here cannot grant write access by itself.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("role")
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

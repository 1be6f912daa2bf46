package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Role values carried in the JWT "role" claim.
const (
	RolePlayer = "PLAYER"
	RoleAdmin  = "ADMIN"
)

// RequireRole aborts with 403 unless the authenticated role (stored in
// context by JWTAuth) is one of the allowed values.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

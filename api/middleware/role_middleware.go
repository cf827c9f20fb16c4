package middleware

import (
	"net/http"
	"slices"

	"watchlist/internal/entity"

	"github.com/labstack/echo/v4"
)

// RequireRole must run after RequireAuth. It admits the request when the
// resolved user holds any of roles.
func RequireRole(roles ...entity.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}
			if !slices.Contains(roles, principal.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}

package middleware

import (
	"watchlist/internal/entity"

	"github.com/labstack/echo/v4"
)

const contextPrincipalKey = "auth_principal"

// Principal is the user resolved for the current request.
type Principal struct {
	ID       uint
	Email    string
	Username string
	Role     entity.UserRole
}

func SetPrincipal(c echo.Context, principal Principal) {
	c.Set(contextPrincipalKey, principal)
}

func PrincipalFromContext(c echo.Context) (Principal, bool) {
	value := c.Get(contextPrincipalKey)
	principal, ok := value.(Principal)
	return principal, ok
}

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"watchlist/internal/entity"
	"watchlist/internal/utils"

	"github.com/labstack/echo/v4"
)

type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// AuthMiddleware runs the guard pipeline for protected routes: bearer token,
// signature and expiry, subject lookup, verified email. The user is read from
// the store on every request.
type AuthMiddleware struct {
	JWT   *utils.JWTManager
	Users UserFinder
}

func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.JWT == nil || m.Users == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		token := extractBearerToken(c.Request())
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}
		claims, err := m.JWT.ParseAccessToken(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		user, err := m.Users.FindByID(c.Request().Context(), uint(userID))
		if err != nil {
			return err
		}
		if user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
		}
		if !user.IsEmailVerified {
			return echo.NewHTTPError(http.StatusUnauthorized, "email not verified")
		}
		SetPrincipal(c, Principal{
			ID:       user.ID,
			Email:    user.Email,
			Username: user.Username,
			Role:     user.Role,
		})
		return next(c)
	}
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

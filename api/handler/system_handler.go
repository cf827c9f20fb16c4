package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const APIVersion = "1.0.0"

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type SystemHandler struct {
	DB Pinger
}

func (h *SystemHandler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Welcome to the Watchlist API",
		"version": APIVersion,
		"endpoints": map[string]map[string]string{
			"auth": {
				"register":    "POST /auth/register",
				"verifyEmail": "GET /auth/verify-email",
				"login":       "POST /auth/login",
				"verify2FA":   "POST /auth/verify-2fa",
				"profile":     "GET /auth/profile",
				"refresh":     "POST /auth/refresh",
			},
			"movies": {
				"create":   "POST /movies",
				"getAll":   "GET /movies",
				"getOne":   "GET /movies/:id",
				"update":   "PATCH /movies/:id",
				"delete":   "DELETE /movies/:id",
				"stats":    "GET /movies/stats",
				"adminAll": "GET /movies/admin/all",
			},
		},
	})
}

func (h *SystemHandler) Health(c echo.Context) error {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

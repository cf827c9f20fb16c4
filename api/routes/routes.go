package routes

import (
	"time"

	"watchlist/api/handler"
	"watchlist/api/middleware"
	"watchlist/internal/entity"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Movies         *handler.MovieHandler
	System         *handler.SystemHandler
	AuthMiddleware middleware.AuthMiddleware
	AuthRate       *middleware.RateLimiter
	LoginRate      *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	movieHandler *handler.MovieHandler,
	systemHandler *handler.SystemHandler,
	authMiddleware middleware.AuthMiddleware,
) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		Movies:         movieHandler,
		System:         systemHandler,
		AuthMiddleware: authMiddleware,
		AuthRate:       middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:      middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	requireAuth := r.AuthMiddleware.RequireAuth

	e.GET("/", r.System.Index)
	e.GET("/health", r.System.Health)

	auth := e.Group("/auth")
	auth.POST("/register", r.Auth.Register, r.AuthRate.Middleware())
	auth.GET("/verify-email", r.Auth.VerifyEmail, r.AuthRate.Middleware())
	auth.POST("/login", r.Auth.Login, r.LoginRate.Middleware())
	auth.POST("/verify-2fa", r.Auth.Verify2FA, r.AuthRate.Middleware())
	auth.POST("/refresh", r.Auth.Refresh, requireAuth)
	auth.GET("/profile", r.Auth.Profile, requireAuth)

	movies := e.Group("/movies", requireAuth)
	movies.POST("", r.Movies.Create)
	movies.GET("", r.Movies.List)
	movies.GET("/stats", r.Movies.Stats)
	movies.GET("/admin/all", r.Movies.AdminList, middleware.RequireRole(entity.UserRoleAdmin))
	movies.GET("/:id", r.Movies.Get)
	movies.PATCH("/:id", r.Movies.Update)
	movies.DELETE("/:id", r.Movies.Delete)
}

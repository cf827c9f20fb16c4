package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"watchlist/api/handler"
	apiMiddleware "watchlist/api/middleware"
	"watchlist/api/routes"
	"watchlist/config"
	"watchlist/internal/mailer"
	"watchlist/internal/migration"
	"watchlist/internal/repository"
	"watchlist/internal/service"
	"watchlist/internal/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.UsingInsecureJWTSecret {
		logger.Warn("JWT_SECRET is not set, signing tokens with the built-in development secret")
	}

	db, err := config.ConnectionDb(cfg)
	if err != nil {
		logger.WithError(err).Fatal("connect database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.WithError(err).Fatal("database handle")
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		if err := migration.Up(context.Background(), sqlDB); err != nil {
			logger.WithError(err).Fatal("run migrations")
		}
	}

	transport, err := newMailTransport(cfg)
	if err != nil {
		logger.WithError(err).Fatal("mail transport")
	}
	mail := mailer.New(transport, cfg.MailFrom, cfg.AppBaseURL, logger)
	mail.VerificationTTL = cfg.VerificationTokenTTL
	mail.CodeTTL = cfg.TwoFactorCodeTTL

	accessManager := utils.JWTManager{
		Secret:         []byte(cfg.JWTSecret),
		Issuer:         cfg.JWTIssuer,
		AccessTokenTTL: cfg.JWTTTL,
	}

	userRepo := repository.NewUserRepository(db)
	verificationRepo := repository.NewEmailVerificationRepository(db)
	codeRepo := repository.NewTwoFactorCodeRepository(db)
	securityRepo := repository.NewSecurityLogRepository(db)
	movieRepo := repository.NewMovieRepository(db)

	authService := service.NewAuthService(
		userRepo,
		verificationRepo,
		codeRepo,
		securityRepo,
		mail,
		service.BcryptPasswordHasher{Cost: cfg.BcryptCost},
		service.JWTAccessIssuer{Manager: &accessManager},
		service.RandomCodeGenerator{},
		service.RealClock{},
		service.AuthConfig{
			VerificationTokenTTL: cfg.VerificationTokenTTL,
			TwoFactorCodeTTL:     cfg.TwoFactorCodeTTL,
		},
	)
	movieService := service.NewMovieService(movieRepo, service.RealClock{})

	validate := handler.NewValidator()
	authHandler := handler.NewAuthHandler(authService, validate, logger)
	movieHandler := handler.NewMovieHandler(movieService, validate, logger)
	systemHandler := &handler.SystemHandler{DB: sqlDB}

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status":     v.Status,
				"method":     v.Method,
				"uri":        v.URI,
				"ip":         v.RemoteIP,
				"request_id": v.RequestID,
				"latency":    v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{JWT: &accessManager, Users: userRepo}
	router := routes.NewRouter(app, authHandler, movieHandler, systemHandler, authMiddleware)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("server started")
		if err := app.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown")
	}
	logger.Info("server stopped")
}

func newMailTransport(cfg *config.Config) (mailer.Transport, error) {
	if cfg.ResendAPIKey != "" {
		return mailer.NewResendTransport(cfg.ResendAPIKey)
	}
	return mailer.NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword), nil
}

package handler

import (
	"errors"
	"net/http"

	"watchlist/api/middleware"
	"watchlist/internal/dto"
	"watchlist/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const MessageProfile = "User profile"

type AuthHandler struct {
	Service  *service.AuthService
	Validate *validator.Validate
	Logger   logrus.FieldLogger
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		Service:  svc,
		Validate: validate,
		Logger:   logger,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := decodeJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := validatePayload(h.Validate, req); err != nil {
		return h.fail(c, err)
	}
	input := service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		IP:       stringPtr(c.RealIP()),
	}
	result, err := h.Service.Register(c.Request().Context(), input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto.RegisterResponse{Message: result.Message, UserID: result.UserID})
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	req := dto.VerifyEmailRequest{Token: c.QueryParam("token")}
	if err := validatePayload(h.Validate, req); err != nil {
		return h.fail(c, err)
	}
	message, err := h.Service.VerifyEmail(c.Request().Context(), req.Token)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: message})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := validatePayload(h.Validate, req); err != nil {
		return h.fail(c, err)
	}
	input := service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       stringPtr(c.RealIP()),
	}
	result, err := h.Service.Login(c.Request().Context(), input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.LoginResponse{Message: result.Message, UserID: result.UserID})
}

func (h *AuthHandler) Verify2FA(c echo.Context) error {
	var req dto.Verify2FARequest
	if err := decodeJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := validatePayload(h.Validate, req); err != nil {
		return h.fail(c, err)
	}
	input := service.Verify2FAInput{
		UserID: req.UserID,
		Code:   req.Code,
		IP:     stringPtr(c.RealIP()),
	}
	result, err := h.Service.Verify2FA(c.Request().Context(), input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.Verify2FAResponse{
		Message:     result.Message,
		User:        dto.UserResponseFromPublic(result.User),
		AccessToken: result.AccessToken,
		ExpiresIn:   int64(result.ExpiresIn.Seconds()),
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	token, err := h.Service.RefreshToken(c.Request().Context(), principal.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.RefreshResponse{AccessToken: token})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	return c.JSON(http.StatusOK, dto.ProfileResponse{
		Message: MessageProfile,
		User: dto.ProfileUser{
			ID:       principal.ID,
			Email:    principal.Email,
			Username: principal.Username,
			Role:     string(principal.Role),
		},
	})
}

func (h *AuthHandler) fail(c echo.Context, err error) error {
	return writeServiceError(c, h.Logger, err)
}

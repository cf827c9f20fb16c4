package handler

import (
	"errors"
	"net/http"
	"strconv"

	"watchlist/api/middleware"
	"watchlist/internal/dto"
	"watchlist/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type MovieHandler struct {
	Service  *service.MovieService
	Validate *validator.Validate
	Logger   logrus.FieldLogger
}

func NewMovieHandler(svc *service.MovieService, validate *validator.Validate, logger logrus.FieldLogger) *MovieHandler {
	return &MovieHandler{
		Service:  svc,
		Validate: validate,
		Logger:   logger,
	}
}

func (h *MovieHandler) Create(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.CreateMovieRequest
	if err := decodeJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := validatePayload(h.Validate, req); err != nil {
		return h.fail(c, err)
	}
	movie, err := h.Service.Create(c.Request().Context(), req.Input(), principal.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto.MovieResponseFromEntity(movie))
}

func (h *MovieHandler) List(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	movies, err := h.Service.FindAllForUser(c.Request().Context(), principal.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.MovieResponsesFromEntities(movies))
}

func (h *MovieHandler) AdminList(c echo.Context) error {
	movies, err := h.Service.FindAllAdmin(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.MovieResponsesFromEntities(movies))
}

func (h *MovieHandler) Stats(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	stats, err := h.Service.GetStats(c.Request().Context(), principal.ID, principal.Role)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.StatsResponseFromService(stats))
}

func (h *MovieHandler) Get(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	id, err := parseMovieID(c)
	if err != nil {
		return h.fail(c, err)
	}
	movie, err := h.Service.FindOne(c.Request().Context(), id, principal.ID, principal.Role)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.MovieResponseFromEntity(movie))
}

func (h *MovieHandler) Update(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	id, err := parseMovieID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req dto.UpdateMovieRequest
	if err := decodeJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := validatePayload(h.Validate, req); err != nil {
		return h.fail(c, err)
	}
	movie, err := h.Service.Update(c.Request().Context(), id, req.Input(), principal.ID, principal.Role)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.MovieResponseFromEntity(movie))
}

func (h *MovieHandler) Delete(c echo.Context) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	id, err := parseMovieID(c)
	if err != nil {
		return h.fail(c, err)
	}
	message, err := h.Service.Remove(c.Request().Context(), id, principal.ID, principal.Role)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: message})
}

func (h *MovieHandler) fail(c echo.Context, err error) error {
	return writeServiceError(c, h.Logger, err)
}

func parseMovieID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ValidationError("invalid movie id")
	}
	return uint(id), nil
}

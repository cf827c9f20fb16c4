package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"watchlist/internal/entity"
	"watchlist/internal/repository"
)

const (
	MinMovieYear = 1900

	MessageMovieDeleted = "Movie deleted successfully"
)

type MovieInput struct {
	Title       string
	Description *string
	Year        *int
}

// MovieUpdateInput is a partial update; nil fields are left untouched. The
// Clear flags null the column and win over a value.
type MovieUpdateInput struct {
	Title       *string
	Description *string
	Year        *int

	ClearDescription bool
	ClearYear        bool
}

type MovieStats struct {
	TotalMovies  int64
	MoviesByYear []entity.YearCount
}

type MovieService struct {
	movies repository.MovieRepository
	clock  Clock
}

func NewMovieService(movies repository.MovieRepository, clock Clock) *MovieService {
	return &MovieService{movies: movies, clock: clock}
}

func (s *MovieService) Create(ctx context.Context, input MovieInput, ownerID uint) (*entity.Movie, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ValidationError("title is required")
	}
	if err := s.checkYear(input.Year); err != nil {
		return nil, err
	}

	movie := &entity.Movie{
		Title:       title,
		Description: input.Description,
		Year:        input.Year,
		UserID:      ownerID,
	}
	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}
	return s.reload(ctx, movie.ID)
}

// FindAllForUser never consults the caller's role; the cross-owner listing is
// FindAllAdmin.
func (s *MovieService) FindAllForUser(ctx context.Context, userID uint) ([]entity.Movie, error) {
	movies, err := s.movies.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

func (s *MovieService) FindAllAdmin(ctx context.Context) ([]entity.Movie, error) {
	movies, err := s.movies.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all movies: %w", err)
	}
	return movies, nil
}

func (s *MovieService) FindOne(ctx context.Context, id uint, userID uint, role entity.UserRole) (*entity.Movie, error) {
	return s.authorize(ctx, id, userID, role)
}

func (s *MovieService) Update(
	ctx context.Context,
	id uint,
	input MovieUpdateInput,
	userID uint,
	role entity.UserRole,
) (*entity.Movie, error) {

	if _, err := s.authorize(ctx, id, userID, role); err != nil {
		return nil, err
	}

	update := repository.MovieUpdate{
		Description:      input.Description,
		Year:             input.Year,
		ClearDescription: input.ClearDescription,
		ClearYear:        input.ClearYear,
	}
	if input.ClearYear {
		update.Year = nil
	}
	if input.ClearDescription {
		update.Description = nil
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ValidationError("title must not be empty")
		}
		update.Title = &title
	}
	if err := s.checkYear(update.Year); err != nil {
		return nil, err
	}

	if err := s.movies.Update(ctx, id, update); err != nil {
		return nil, fmt.Errorf("update movie: %w", err)
	}
	return s.reload(ctx, id)
}

func (s *MovieService) Remove(ctx context.Context, id uint, userID uint, role entity.UserRole) (string, error) {
	if _, err := s.authorize(ctx, id, userID, role); err != nil {
		return "", err
	}
	if err := s.movies.Delete(ctx, id); err != nil {
		return "", fmt.Errorf("delete movie: %w", err)
	}
	return MessageMovieDeleted, nil
}

// GetStats covers every owner for admins and only userID's movies otherwise.
func (s *MovieService) GetStats(ctx context.Context, userID uint, role entity.UserRole) (*MovieStats, error) {
	var scope *uint
	if role != entity.UserRoleAdmin {
		scope = &userID
	}

	total, err := s.movies.Count(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("count movies: %w", err)
	}
	byYear, err := s.movies.CountByYear(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("count movies by year: %w", err)
	}
	if byYear == nil {
		byYear = []entity.YearCount{}
	}
	return &MovieStats{TotalMovies: total, MoviesByYear: byYear}, nil
}

// authorize loads the movie and applies the owner-or-admin gate. A missing
// movie wins over a foreign one.
func (s *MovieService) authorize(ctx context.Context, id uint, userID uint, role entity.UserRole) (*entity.Movie, error) {
	movie, err := s.movies.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find movie: %w", err)
	}
	if movie == nil {
		return nil, NotFoundError(msgMovieNotFound)
	}
	if role != entity.UserRoleAdmin && movie.UserID != userID {
		return nil, PermissionError(msgMovieForbidden)
	}
	return movie, nil
}

func (s *MovieService) reload(ctx context.Context, id uint) (*entity.Movie, error) {
	movie, err := s.movies.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find movie: %w", err)
	}
	if movie == nil {
		return nil, NotFoundError(msgMovieNotFound)
	}
	return movie, nil
}

func (s *MovieService) checkYear(year *int) error {
	if year == nil {
		return nil
	}
	current := s.now().Year()
	if *year < MinMovieYear || *year > current {
		return ValidationError(fmt.Sprintf("year must be between %d and %d", MinMovieYear, current))
	}
	return nil
}

func (s *MovieService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

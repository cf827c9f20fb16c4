package dto

import (
	"time"

	"watchlist/internal/entity"
	"watchlist/internal/service"
)

type CreateMovieRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Year        *int    `json:"year" validate:"omitempty,min=1900"`
}

func (r CreateMovieRequest) Input() service.MovieInput {
	return service.MovieInput{Title: r.Title, Description: r.Description, Year: r.Year}
}

// UpdateMovieRequest is a partial update. An absent field is left alone; an
// explicit null clears description or year and is rejected for title.
type UpdateMovieRequest struct {
	Title       Nullable[string] `json:"title"`
	Description Nullable[string] `json:"description"`
	Year        Nullable[int]    `json:"year"`
}

func (r UpdateMovieRequest) Input() service.MovieUpdateInput {
	input := service.MovieUpdateInput{
		Description:      r.Description.Value,
		Year:             r.Year.Value,
		ClearDescription: r.Description.IsNull(),
		ClearYear:        r.Year.IsNull(),
	}
	if r.Title.Set {
		title := ""
		if r.Title.Value != nil {
			title = *r.Title.Value
		}
		input.Title = &title
	}
	return input
}

type MovieOwner struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type MovieResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Year        *int       `json:"year"`
	UserID      uint       `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	User        MovieOwner `json:"user"`
}

func MovieResponseFromEntity(movie *entity.Movie) MovieResponse {
	return MovieResponse{
		ID:          movie.ID,
		Title:       movie.Title,
		Description: movie.Description,
		Year:        movie.Year,
		UserID:      movie.UserID,
		CreatedAt:   movie.CreatedAt,
		UpdatedAt:   movie.UpdatedAt,
		User: MovieOwner{
			ID:       movie.User.ID,
			Username: movie.User.Username,
			Email:    movie.User.Email,
		},
	}
}

func MovieResponsesFromEntities(movies []entity.Movie) []MovieResponse {
	responses := make([]MovieResponse, 0, len(movies))
	for i := range movies {
		responses = append(responses, MovieResponseFromEntity(&movies[i]))
	}
	return responses
}

type YearCountResponse struct {
	Year  *int  `json:"year"`
	Count int64 `json:"count"`
}

type StatsResponse struct {
	TotalMovies  int64               `json:"totalMovies"`
	MoviesByYear []YearCountResponse `json:"moviesByYear"`
}

func StatsResponseFromService(stats *service.MovieStats) StatsResponse {
	byYear := make([]YearCountResponse, 0, len(stats.MoviesByYear))
	for _, row := range stats.MoviesByYear {
		byYear = append(byYear, YearCountResponse{Year: row.Year, Count: row.Count})
	}
	return StatsResponse{TotalMovies: stats.TotalMovies, MoviesByYear: byYear}
}

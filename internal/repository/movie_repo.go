package repository

import (
	"context"
	"errors"

	"watchlist/internal/entity"

	"gorm.io/gorm"
)

// MovieUpdate carries the columns a partial update touches. Nil fields are
// left unchanged; the Clear flags set the column to NULL.
type MovieUpdate struct {
	Title       *string
	Description *string
	Year        *int

	ClearDescription bool
	ClearYear        bool
}

type MovieRepository interface {
	Create(ctx context.Context, movie *entity.Movie) error
	FindByID(ctx context.Context, id uint) (*entity.Movie, error)
	ListByUser(ctx context.Context, userID uint) ([]entity.Movie, error)
	ListAll(ctx context.Context) ([]entity.Movie, error)
	Update(ctx context.Context, id uint, update MovieUpdate) error
	Delete(ctx context.Context, id uint) error
	// Count and CountByYear cover every owner when userID is nil.
	Count(ctx context.Context, userID *uint) (int64, error)
	CountByYear(ctx context.Context, userID *uint) ([]entity.YearCount, error)
}

type movieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) MovieRepository {
	return &movieRepository{db: db}
}

func (r *movieRepository) Create(ctx context.Context, movie *entity.Movie) error {
	return r.db.WithContext(ctx).Omit("User").Create(movie).Error
}

func (r *movieRepository) FindByID(ctx context.Context, id uint) (*entity.Movie, error) {
	var movie entity.Movie
	err := r.withOwner(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&movie).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *movieRepository) ListByUser(ctx context.Context, userID uint) ([]entity.Movie, error) {
	return r.list(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *movieRepository) ListAll(ctx context.Context) ([]entity.Movie, error) {
	return r.list(r.db.WithContext(ctx))
}

func (r *movieRepository) Update(ctx context.Context, id uint, update MovieUpdate) error {
	columns := map[string]any{}
	if update.Title != nil {
		columns["title"] = *update.Title
	}
	if update.Description != nil {
		columns["description"] = *update.Description
	}
	if update.Year != nil {
		columns["year"] = *update.Year
	}
	if update.ClearDescription {
		columns["description"] = nil
	}
	if update.ClearYear {
		columns["year"] = nil
	}
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entity.Movie{}).
		Where("id = ?", id).
		Updates(columns).
		Error
}

func (r *movieRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Movie{}, id).Error
}

func (r *movieRepository) Count(ctx context.Context, userID *uint) (int64, error) {
	var total int64
	err := r.scoped(r.db.WithContext(ctx).Model(&entity.Movie{}), userID).
		Count(&total).Error
	return total, err
}

func (r *movieRepository) CountByYear(ctx context.Context, userID *uint) ([]entity.YearCount, error) {
	var rows []entity.YearCount
	err := r.scoped(r.db.WithContext(ctx).Model(&entity.Movie{}), userID).
		Select("year, COUNT(*) AS count").
		Group("year").
		Order("year DESC NULLS LAST").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *movieRepository) list(query *gorm.DB) ([]entity.Movie, error) {
	var movies []entity.Movie
	err := r.withOwner(query).
		Order("created_at DESC").
		Order("id DESC").
		Find(&movies).Error
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (r *movieRepository) withOwner(query *gorm.DB) *gorm.DB {
	return query.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "username", "email")
	})
}

func (r *movieRepository) scoped(query *gorm.DB, userID *uint) *gorm.DB {
	if userID == nil {
		return query
	}
	return query.Where("user_id = ?", *userID)
}

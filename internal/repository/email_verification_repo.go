package repository

import (
	"context"
	"errors"

	"watchlist/internal/entity"

	"gorm.io/gorm"
)

type EmailVerificationRepository interface {
	FindByTokenHash(ctx context.Context, tokenHash string) (*entity.EmailVerification, error)
	// Consume deletes the verification and marks the owning user verified in
	// one transaction. It reports false when another call already consumed
	// the row.
	Consume(ctx context.Context, verification *entity.EmailVerification) (bool, error)
}

type emailVerificationRepository struct {
	db *gorm.DB
}

func NewEmailVerificationRepository(db *gorm.DB) EmailVerificationRepository {
	return &emailVerificationRepository{db: db}
}

func (r *emailVerificationRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entity.EmailVerification, error) {
	var verification entity.EmailVerification
	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&verification).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &verification, nil
}

func (r *emailVerificationRepository) Consume(ctx context.Context, v *entity.EmailVerification) (bool, error) {
	consumed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&entity.EmailVerification{}, v.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&entity.User{}).
			Where("id = ?", v.UserID).
			Update("is_email_verified", true).Error; err != nil {
			return err
		}
		consumed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return consumed, nil
}

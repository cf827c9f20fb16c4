package repository

import (
	"context"
	"errors"
	"time"

	"watchlist/internal/entity"

	"gorm.io/gorm"
)

type TwoFactorCodeRepository interface {
	// Replace drops every code the user holds and stores the new one.
	Replace(ctx context.Context, code *entity.TwoFactorCode) error
	FindValid(ctx context.Context, userID uint, codeHash string, now time.Time) (*entity.TwoFactorCode, error)
	// Delete reports whether this call removed the row.
	Delete(ctx context.Context, id uint) (bool, error)
}

type twoFactorCodeRepository struct {
	db *gorm.DB
}

func NewTwoFactorCodeRepository(db *gorm.DB) TwoFactorCodeRepository {
	return &twoFactorCodeRepository{db: db}
}

func (r *twoFactorCodeRepository) Replace(ctx context.Context, code *entity.TwoFactorCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", code.UserID).Delete(&entity.TwoFactorCode{}).Error; err != nil {
			return err
		}
		return tx.Create(code).Error
	})
}

func (r *twoFactorCodeRepository) FindValid(
	ctx context.Context,
	userID uint,
	codeHash string,
	now time.Time,
) (*entity.TwoFactorCode, error) {

	var code entity.TwoFactorCode
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND code_hash = ? AND expires_at > ?", userID, codeHash, now).
		First(&code).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *twoFactorCodeRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&entity.TwoFactorCode{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

package entity

import "time"

type TwoFactorCode struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"not null;index"`
	User   User `gorm:"constraint:OnDelete:CASCADE"`

	CodeHash  string `gorm:"type:text;not null"`
	ExpiresAt time.Time

	CreatedAt time.Time
}

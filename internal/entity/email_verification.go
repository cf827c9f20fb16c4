package entity

import "time"

// EmailVerification holds the SHA-256 of the token mailed to the user; the raw
// token is never persisted.
type EmailVerification struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"not null;index"`
	User   User `gorm:"constraint:OnDelete:CASCADE"`

	TokenHash string `gorm:"type:text;not null;uniqueIndex"`
	ExpiresAt time.Time

	CreatedAt time.Time
}

func (v EmailVerification) Expired(now time.Time) bool {
	return !v.ExpiresAt.After(now)
}

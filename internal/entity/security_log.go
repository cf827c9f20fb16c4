package entity

import (
	"time"

	"gorm.io/datatypes"
)

type SecurityAction string

const (
	Registered         SecurityAction = "register"
	EmailVerified      SecurityAction = "email_verified"
	LoginChallenge     SecurityAction = "login_challenge"
	LoginFailed        SecurityAction = "login_failed"
	TwoFactorFailed    SecurityAction = "two_factor_failed"
	TwoFactorSucceeded SecurityAction = "two_factor_success"
	TokenRefreshed     SecurityAction = "token_refreshed"
)

type SecurityLog struct {
	ID uint `gorm:"primaryKey"`

	UserID *uint `gorm:"index"`
	User   *User `gorm:"constraint:OnDelete:SET NULL"`

	IPAddress *string        `gorm:"type:varchar(45)"`
	Action    SecurityAction `gorm:"type:varchar(32);not null"`

	Metadata datatypes.JSON

	CreatedAt time.Time
}

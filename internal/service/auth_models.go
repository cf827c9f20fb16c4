package service

import (
	"time"

	"watchlist/internal/entity"
)

type RegisterInput struct {
	Email    string
	Username string
	Password string
	IP       *string
}

type LoginInput struct {
	Email    string
	Password string
	IP       *string
}

type Verify2FAInput struct {
	UserID uint
	Code   string
	IP     *string
}

type RegisterResult struct {
	Message string
	UserID  uint
}

type LoginResult struct {
	Message string
	UserID  uint
}

type Verify2FAResult struct {
	Message     string
	User        PublicUser
	AccessToken string
	ExpiresIn   time.Duration
}

// PublicUser is a User without its password hash.
type PublicUser struct {
	ID              uint
	Email           string
	Username        string
	Role            entity.UserRole
	IsEmailVerified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewPublicUser(user entity.User) PublicUser {
	return PublicUser{
		ID:              user.ID,
		Email:           user.Email,
		Username:        user.Username,
		Role:            user.Role,
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

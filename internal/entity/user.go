package entity

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

type User struct {
	ID       uint     `gorm:"primaryKey"`
	Email    string   `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username string   `gorm:"type:varchar(100);uniqueIndex;not null"`
	Password string   `gorm:"type:text;not null"`
	Role     UserRole `gorm:"type:varchar(16);default:'USER';not null"`

	IsEmailVerified bool `gorm:"default:false;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Movies []Movie
}

func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

package entity

import "time"

type Movie struct {
	ID          uint    `gorm:"primaryKey"`
	Title       string  `gorm:"type:varchar(255);not null"`
	Description *string `gorm:"type:text"`
	Year        *int

	UserID uint `gorm:"not null;index"`
	User   User `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// YearCount is one row of the per-year watchlist breakdown. Year is nil for
// movies saved without a release year.
type YearCount struct {
	Year  *int
	Count int64
}

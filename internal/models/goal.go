package models

import "time"

// Goal is a savings target. SavedAmount moves only through explicit
// contributions, never derived from transactions.
type Goal struct {
	ID           string  `gorm:"primaryKey;size:64"` // UUID
	UserID       uint    `gorm:"index;not null"`
	Title        string  `gorm:"size:128;not null"`
	TargetAmount float64 `gorm:"not null"`
	TargetMonths int     `gorm:"not null"`
	SavedAmount  float64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

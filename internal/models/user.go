package models

import "time"

// Actor types stored on User.ActorType and Transaction.Actor.
const (
	ActorOwner  = "owner"
	ActorMember = "member"
)

// User represents the single wallet owner account.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	DisplayName  string `gorm:"size:64"`
	Email        string `gorm:"size:128"`
	Phone        string `gorm:"size:32"`
	PIN          string `gorm:"size:8"` // optional 4-digit quick-access PIN

	ReportLang string `gorm:"size:8;default:en"` // en or ar, report rendering only

	BaseCurrency    string `gorm:"size:8;default:QAR"`
	ActiveCurrency  string `gorm:"size:8;default:QAR"` // wallet selected for owner operations
	DisplayCurrency string `gorm:"size:8;default:QAR"`

	// active actor context: owner or one of the family members
	ActorType     string `gorm:"size:16;default:owner"`
	ActorMemberID string `gorm:"size:64"`

	FailedLoginAttempts int        `gorm:"default:0"`
	LockedUntil         *time.Time `gorm:"index"`
	LastLoginAt         *time.Time
	LastLoginIP         string `gorm:"size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

package models

import "time"

// Member spending modes.
const (
	ModeAllowance = "allowance" // spends against a standalone allowance balance
	ModeFull      = "full"      // spends against the owner's base-currency wallet
)

// Member is a delegated family spending identity with rolling limits.
//
// Limit counters are reset lazily when the current time crosses a window
// boundary (midnight, Monday-aligned week start, calendar-month start);
// there is no background timer.
type Member struct {
	ID        string `gorm:"primaryKey;size:64"` // UUID
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"size:128;not null"`
	Phone     string `gorm:"size:32"`
	Mode      string `gorm:"size:16;not null;default:allowance"`
	Allowance float64 `gorm:"not null;default:0"` // meaningful only in allowance mode

	// rolling limit caps; zero means no limit
	LimitPerTx   float64 `gorm:"not null;default:0"`
	LimitDaily   float64 `gorm:"not null;default:0"`
	LimitWeekly  float64 `gorm:"not null;default:0"`
	LimitMonthly float64 `gorm:"not null;default:0"`

	// used counters and window starts
	UsedToday  float64   `gorm:"not null;default:0"`
	UsedWeek   float64   `gorm:"not null;default:0"`
	UsedMonth  float64   `gorm:"not null;default:0"`
	StartToday time.Time
	StartWeek  time.Time
	StartMonth time.Time

	Frozen        bool       `gorm:"not null;default:false"`
	FrozenUntil   *time.Time // nil while frozen means permanent
	FreezeHistory string     `gorm:"type:text"` // JSON array of freeze/unfreeze events

	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// FreezeEvent is one entry of Member.FreezeHistory.
type FreezeEvent struct {
	Kind  string     `json:"kind"` // freeze / unfreeze / auto_unfreeze
	From  *time.Time `json:"from,omitempty"`
	Until *time.Time `json:"until,omitempty"`
	At    *time.Time `json:"at,omitempty"`
}

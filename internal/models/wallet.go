package models

import "time"

// Wallet holds one balance per currency code. Wallets are created lazily
// on first reference to a currency and never deleted.
type Wallet struct {
	ID       uint    `gorm:"primaryKey"`
	UserID   uint    `gorm:"uniqueIndex:idx_wallet_user_ccy;not null"`
	Currency string  `gorm:"size:8;uniqueIndex:idx_wallet_user_ccy;not null"`
	Balance  float64 `gorm:"not null;default:0"`
	Hold     float64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

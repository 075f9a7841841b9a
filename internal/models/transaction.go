package models

import "time"

// Transaction kinds.
const (
	TxDeposit        = "deposit"
	TxWithdraw       = "withdraw"
	TxMerchant       = "merchant"
	TxMemberPurchase = "member_purchase"
	TxFxIn           = "fx_in"
	TxFxOut          = "fx_out"
	TxMemberFund     = "member_fund"
)

// Transaction statuses. A pending merchant charge moves forward exactly
// once: pending -> settled or pending -> failed.
const (
	StatusPending = "pending"
	StatusSettled = "settled"
	StatusFailed  = "failed"
)

// Transaction is a single ledger movement. Actor is "owner" or a member id.
type Transaction struct {
	ID       string    `gorm:"primaryKey;size:64"` // UUID
	UserID   uint      `gorm:"index;not null"`
	Ts       time.Time `gorm:"index;not null"`
	Kind     string    `gorm:"size:24;index;not null"`
	Amount   float64   `gorm:"not null"` // always positive; kind carries direction
	Currency string    `gorm:"size:8;not null"`
	Status   string    `gorm:"size:16;index;not null"`
	Actor    string    `gorm:"size:64;index;not null"`
	Category string    `gorm:"size:32;default:general"`
	Ref      string    `gorm:"size:128"`

	// decorative Serial Twin fields, not verifiable proofs
	SerialID  string `gorm:"size:64"`
	BlockHash string `gorm:"size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

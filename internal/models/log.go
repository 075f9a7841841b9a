package models

import "time"

// AuditLog records important operations for auditing. Path and action are
// stored encrypted (AES + base64).
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    *uint  `gorm:"index"`
	PathEnc   string `gorm:"size:1024"`
	Method    string `gorm:"size:16"`
	ActionEnc string `gorm:"size:4096"`
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:255"`
	CreatedAt time.Time
}

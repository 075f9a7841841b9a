package models

import "time"

// Backup stores metadata of an encrypted backup file on disk.
type Backup struct {
	ID       uint   `gorm:"primaryKey"`
	UserID   uint   `gorm:"index;not null"`
	FileName string `gorm:"size:255;not null"`
	FilePath string `gorm:"size:512;not null"`
	Size     int64

	CreatedAt time.Time
}

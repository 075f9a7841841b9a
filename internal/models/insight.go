package models

import "time"

// InsightSnapshot is an append-only history row recorded after mutating
// operations. Never updated or deleted except by a full account reset.
type InsightSnapshot struct {
	ID              string    `gorm:"primaryKey;size:64"`
	UserID          uint      `gorm:"index;not null"`
	Ts              time.Time `gorm:"index;not null"`
	Reason          string    `gorm:"size:32"` // tx / view / auto
	ActorType       string    `gorm:"size:16"`
	ActorMemberID   string    `gorm:"size:64"`
	BaseCurrency    string    `gorm:"size:8"`
	DisplayCurrency string    `gorm:"size:8"`

	Score       int
	ScoreLabel  string  `gorm:"size:32"`
	RunwayDays  float64 // 0 when runway is undefined
	Net30       float64
	TotalIn30   float64
	TotalOut30  float64
	DailySpend  float64
	DailySpend7 float64

	CQI float64
	CPS float64
	BV  float64
	SMS float64
	SDI float64
	FSR float64

	CreatedAt time.Time
}

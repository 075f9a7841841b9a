package service

import (
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/alsultanqa/mini-back/internal/models"
)

// Settler finalizes pending merchant charges after a short artificial delay.
// Each pending transaction is tracked by id; settlement is a guarded update
// so a charge settles at most once even if a timer races a manual reset.
type Settler struct {
	db     *gorm.DB
	delay  time.Duration
	serial *SerialGen

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewSettler(db *gorm.DB, delay time.Duration, serial *SerialGen) *Settler {
	return &Settler{
		db:     db,
		delay:  delay,
		serial: serial,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms a timer that settles the transaction after the configured
// delay. The timer is dropped from the map whether or not the settle wins.
func (s *Settler) Schedule(txID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[txID]; ok {
		return
	}
	s.timers[txID] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.timers, txID)
		s.mu.Unlock()
		if err := s.Settle(txID); err != nil {
			log.Printf("settle %s: %v", txID, err)
		}
	})
}

// Resume re-arms settlement for every pending charge left over from a
// previous process run. An owner pay debits the wallet before its timer
// fires, so a pending row orphaned by a restart would hold the debit
// forever while staying invisible to every aggregate. Returns the number
// of rescheduled charges.
func (s *Settler) Resume() (int, error) {
	var ids []string
	if err := s.db.Model(&models.Transaction{}).
		Where("status = ?", models.StatusPending).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.Schedule(id)
	}
	return len(ids), nil
}

// Settle moves one transaction from pending to settled and stamps its
// serial twin. The WHERE clause on status makes it a no-op against rows
// already settled, failed, or removed by a reset.
func (s *Settler) Settle(txID string) error {
	var tx models.Transaction
	if err := s.db.Where("id = ? AND status = ?", txID, models.StatusPending).First(&tx).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	serialID, blockHash := s.serial.Next(tx.Currency, time.Now())
	res := s.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", txID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":     models.StatusSettled,
			"serial_id":  serialID,
			"block_hash": blockHash,
		})
	return res.Error
}

// Cancel disarms the timer for one transaction without touching the row.
func (s *Settler) Cancel(txID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[txID]; ok {
		t.Stop()
		delete(s.timers, txID)
	}
}

// CancelAll disarms every outstanding timer. Called on account reset so a
// wiped session cannot be resurrected by a late settlement.
func (s *Settler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// Pending reports how many timers are currently armed.
func (s *Settler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

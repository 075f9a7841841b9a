package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/alsultanqa/mini-back/internal/models"
)

// Rejection sentinels for member spending checks. Handlers map these to
// business-failure responses; nothing is mutated when one is returned.
var (
	ErrMemberFrozen         = errors.New("member card is frozen")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrAllowanceExceeded    = errors.New("allowance exceeded")
	ErrPerTxLimitExceeded   = errors.New("per-transaction limit exceeded")
	ErrDailyLimitExceeded   = errors.New("daily limit exceeded")
	ErrWeeklyLimitExceeded  = errors.New("weekly limit exceeded")
	ErrMonthlyLimitExceeded = errors.New("monthly limit exceeded")
)

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek aligns to Monday 00:00.
func startOfWeek(t time.Time) time.Time {
	d := startOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// RefreshLimitWindows resets any used counter whose window has passed.
// Resets are lazy: they happen on the next check, not on a timer. Returns
// true when any counter changed so the caller knows to persist the member.
func RefreshLimitWindows(m *models.Member, now time.Time) bool {
	changed := false
	if m.StartToday.IsZero() || !now.Before(m.StartToday.AddDate(0, 0, 1)) {
		m.UsedToday = 0
		m.StartToday = startOfDay(now)
		changed = true
	}
	if m.StartWeek.IsZero() || !now.Before(m.StartWeek.AddDate(0, 0, 7)) {
		m.UsedWeek = 0
		m.StartWeek = startOfWeek(now)
		changed = true
	}
	if m.StartMonth.IsZero() || !now.Before(m.StartMonth.AddDate(0, 1, 0)) {
		m.UsedMonth = 0
		m.StartMonth = startOfMonth(now)
		changed = true
	}
	return changed
}

// CheckLimits validates amount against the member's caps after a window
// refresh. A zero cap means no limit on that dimension.
func CheckLimits(m *models.Member, amount float64) error {
	if m.LimitPerTx > 0 && amount > m.LimitPerTx {
		return fmt.Errorf("%w: cap %.2f", ErrPerTxLimitExceeded, m.LimitPerTx)
	}
	if m.LimitDaily > 0 && m.UsedToday+amount > m.LimitDaily {
		return fmt.Errorf("%w: cap %.2f, used %.2f", ErrDailyLimitExceeded, m.LimitDaily, m.UsedToday)
	}
	if m.LimitWeekly > 0 && m.UsedWeek+amount > m.LimitWeekly {
		return fmt.Errorf("%w: cap %.2f, used %.2f", ErrWeeklyLimitExceeded, m.LimitWeekly, m.UsedWeek)
	}
	if m.LimitMonthly > 0 && m.UsedMonth+amount > m.LimitMonthly {
		return fmt.Errorf("%w: cap %.2f, used %.2f", ErrMonthlyLimitExceeded, m.LimitMonthly, m.UsedMonth)
	}
	return nil
}

// BumpLimitCounters records an approved spend against all three windows.
func BumpLimitCounters(m *models.Member, amount float64) {
	m.UsedToday += amount
	m.UsedWeek += amount
	m.UsedMonth += amount
}

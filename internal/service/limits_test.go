package service

import (
	"errors"
	"testing"
	"time"

	"github.com/alsultanqa/mini-back/internal/models"
)

func TestStartOfWeek_MondayAligned(t *testing.T) {
	// Sunday 2026-08-30 belongs to the week starting Monday 2026-08-24
	sunday := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	got := startOfWeek(sunday)
	want := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("startOfWeek(sunday) = %v, want %v", got, want)
	}

	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	if got := startOfWeek(monday); !got.Equal(monday) {
		t.Errorf("startOfWeek(monday) = %v, want the same day", got)
	}
}

func TestRefreshLimitWindows_LazyReset(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m := &models.Member{
		UsedToday:  50,
		UsedWeek:   120,
		UsedMonth:  300,
		StartToday: startOfDay(now.AddDate(0, 0, -1)),
		StartWeek:  startOfWeek(now),
		StartMonth: startOfMonth(now),
	}

	if !RefreshLimitWindows(m, now) {
		t.Fatal("expected a reset when the day window passed")
	}
	if m.UsedToday != 0 {
		t.Errorf("UsedToday = %f, want 0 after day rollover", m.UsedToday)
	}
	if m.UsedWeek != 120 || m.UsedMonth != 300 {
		t.Errorf("week/month counters = %f/%f, want untouched", m.UsedWeek, m.UsedMonth)
	}

	// a second refresh in the same window is a no-op
	if RefreshLimitWindows(m, now) {
		t.Error("second refresh in the same window reported a change")
	}
}

func TestRefreshLimitWindows_ZeroValueMember(t *testing.T) {
	m := &models.Member{UsedToday: 10, UsedWeek: 10, UsedMonth: 10}
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	if !RefreshLimitWindows(m, now) {
		t.Fatal("expected initialization of zero window starts")
	}
	if m.UsedToday != 0 || m.UsedWeek != 0 || m.UsedMonth != 0 {
		t.Error("counters not cleared on first-ever refresh")
	}
	if !m.StartWeek.Equal(startOfWeek(now)) {
		t.Errorf("StartWeek = %v, want %v", m.StartWeek, startOfWeek(now))
	}
}

func TestCheckLimits(t *testing.T) {
	m := &models.Member{
		LimitPerTx: 100, LimitDaily: 130, LimitWeekly: 400, LimitMonthly: 0,
		UsedToday: 50, UsedWeek: 350, UsedMonth: 9999,
	}

	if err := CheckLimits(m, 120); !errors.Is(err, ErrPerTxLimitExceeded) {
		t.Errorf("err = %v, want per-tx limit", err)
	}
	// 90 clears the per-tx cap but pushes the day to 140 of 130
	if err := CheckLimits(m, 90); !errors.Is(err, ErrDailyLimitExceeded) {
		t.Errorf("err = %v, want daily limit", err)
	}
	// 51 clears per-tx and daily but pushes the week to 401 of 400
	if err := CheckLimits(m, 51); !errors.Is(err, ErrWeeklyLimitExceeded) {
		t.Errorf("err = %v, want weekly limit", err)
	}
	// zero monthly cap means unlimited
	if err := CheckLimits(m, 50); err != nil {
		t.Errorf("err = %v, want nil within all caps", err)
	}
}

func TestBumpLimitCounters(t *testing.T) {
	m := &models.Member{UsedToday: 1, UsedWeek: 2, UsedMonth: 3}
	BumpLimitCounters(m, 10)
	if m.UsedToday != 11 || m.UsedWeek != 12 || m.UsedMonth != 13 {
		t.Errorf("counters = %f/%f/%f, want 11/12/13", m.UsedToday, m.UsedWeek, m.UsedMonth)
	}
}

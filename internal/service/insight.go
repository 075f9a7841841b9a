package service

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alsultanqa/mini-back/internal/engine"
	"github.com/alsultanqa/mini-back/internal/fx"
	"github.com/alsultanqa/mini-back/internal/models"
)

// Snapshot log reasons.
const (
	ReasonTx   = "tx"
	ReasonView = "view"
	ReasonAuto = "auto"
)

// InsightService assembles engine inputs from the database and keeps the
// append-only snapshot history.
type InsightService struct {
	db           *gorm.DB
	rates        *fx.Table
	cashbackRate float64
}

func NewInsightService(db *gorm.DB, rates *fx.Table, cashbackRate float64) *InsightService {
	return &InsightService{db: db, rates: rates, cashbackRate: cashbackRate}
}

// Converter builds a converter for the user's base and display currencies
// over the current rate table.
func (s *InsightService) Converter(user *models.User) *fx.Converter {
	return fx.NewConverter(user.BaseCurrency, user.DisplayCurrency, s.rates.Snapshot())
}

// BuildSnapshot loads the user's full state and computes a snapshot for
// the active actor context.
func (s *InsightService) BuildSnapshot(user *models.User, now time.Time) (engine.Snapshot, error) {
	conv := s.Converter(user)

	var txRows []models.Transaction
	if err := s.db.Where("user_id = ?", user.ID).Find(&txRows).Error; err != nil {
		return engine.Empty(conv), err
	}
	txs := make([]engine.Txn, 0, len(txRows))
	for _, t := range txRows {
		txs = append(txs, engine.Txn{
			ID: t.ID, Ts: t.Ts, Kind: t.Kind, Amount: t.Amount,
			Currency: t.Currency, Status: t.Status, Actor: t.Actor, Category: t.Category,
		})
	}

	var walletRows []models.Wallet
	if err := s.db.Where("user_id = ?", user.ID).Find(&walletRows).Error; err != nil {
		return engine.Empty(conv), err
	}
	wallets := make([]engine.WalletBalance, 0, len(walletRows))
	for _, w := range walletRows {
		wallets = append(wallets, engine.WalletBalance{Currency: w.Currency, Balance: w.Balance})
	}

	var goalRows []models.Goal
	if err := s.db.Where("user_id = ?", user.ID).Find(&goalRows).Error; err != nil {
		return engine.Empty(conv), err
	}
	goals := make([]engine.GoalInfo, 0, len(goalRows))
	for _, g := range goalRows {
		goals = append(goals, engine.GoalInfo{
			ID: g.ID, Title: g.Title, Target: g.TargetAmount,
			Months: g.TargetMonths, Saved: g.SavedAmount, CreatedAt: g.CreatedAt,
		})
	}

	actor := engine.Actor{Type: user.ActorType, MemberID: user.ActorMemberID}
	var memberInfo *engine.MemberInfo
	if actor.IsMember() {
		var m models.Member
		err := s.db.Where("user_id = ? AND id = ?", user.ID, user.ActorMemberID).First(&m).Error
		if err == nil {
			memberInfo = &engine.MemberInfo{ID: m.ID, Allowance: m.Allowance}
		} else if err != gorm.ErrRecordNotFound {
			return engine.Empty(conv), err
		}
	}

	return engine.Build(engine.Input{
		Txs:          txs,
		Actor:        actor,
		Member:       memberInfo,
		Wallets:      wallets,
		Goals:        goals,
		Now:          now,
		Conv:         conv,
		CashbackRate: s.cashbackRate,
	}), nil
}

// LogSnapshot appends one history row from a computed snapshot.
func (s *InsightService) LogSnapshot(user *models.User, snap engine.Snapshot, reason string, now time.Time) error {
	runway := 0.0
	if snap.RunwayDays != nil {
		runway = *snap.RunwayDays
	}
	row := models.InsightSnapshot{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		Ts:              now,
		Reason:          reason,
		ActorType:       user.ActorType,
		ActorMemberID:   user.ActorMemberID,
		BaseCurrency:    snap.BaseCur,
		DisplayCurrency: snap.DisplayCur,
		Score:           snap.Behavior.Score,
		ScoreLabel:      snap.Behavior.Label,
		RunwayDays:      runway,
		Net30:           snap.Net30,
		TotalIn30:       snap.TotalIncome30,
		TotalOut30:      snap.TotalOut30,
		DailySpend:      snap.DailySpend,
		DailySpend7:     snap.DailySpend7,
		CQI:             snap.Behavior.Indices.CQI,
		CPS:             snap.Behavior.Indices.CPS,
		BV:              snap.Behavior.Indices.BV,
		SMS:             snap.Behavior.Indices.SMS,
		SDI:             snap.Behavior.Indices.SDI,
		FSR:             snap.Behavior.Indices.FSR,
	}
	return s.db.Create(&row).Error
}

// History returns snapshot rows newest first.
func (s *InsightService) History(userID uint, limit int) ([]models.InsightSnapshot, error) {
	q := s.db.Where("user_id = ?", userID).Order("ts desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.InsightSnapshot
	err := q.Find(&rows).Error
	return rows, err
}

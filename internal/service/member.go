package service

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alsultanqa/mini-back/internal/models"
)

var (
	ErrInvalidFreezeDays = errors.New("freeze duration must be 1, 2, 7 or 14 days")
	ErrNotFrozen         = errors.New("member is not frozen")
)

// MemberService manages family members, their limits, and card freezes.
type MemberService struct {
	db *gorm.DB
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db}
}

// Add creates a member in allowance mode with zero limits.
func (s *MemberService) Add(userID uint, name, phone, mode string) (*models.Member, error) {
	if mode != models.ModeFull {
		mode = models.ModeAllowance
	}
	m := models.Member{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          name,
		Phone:         phone,
		Mode:          mode,
		FreezeHistory: "[]",
	}
	if err := s.db.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns the user's members ordered by creation time.
func (s *MemberService) List(userID uint) ([]models.Member, error) {
	var ms []models.Member
	err := s.db.Where("user_id = ?", userID).Order("created_at asc").Find(&ms).Error
	return ms, err
}

// Get fetches one member by id within the user's scope.
func (s *MemberService) Get(userID uint, memberID string) (*models.Member, error) {
	var m models.Member
	err := s.db.Where("user_id = ? AND id = ?", userID, memberID).First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete removes a member. If the active actor context points at the
// deleted member it falls back to the owner so the session never acts as
// a ghost.
func (s *MemberService) Delete(userID uint, memberID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND id = ?", userID, memberID).Delete(&models.Member{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrMemberNotFound
		}
		return tx.Model(&models.User{}).
			Where("id = ? AND actor_member_id = ?", userID, memberID).
			Updates(map[string]interface{}{
				"actor_type":      models.ActorOwner,
				"actor_member_id": "",
			}).Error
	})
}

// SetLimits replaces the member's limit caps. Zero disables a cap; the
// used counters are kept so tightening a cap applies immediately.
func (s *MemberService) SetLimits(userID uint, memberID string, perTx, daily, weekly, monthly float64) (*models.Member, error) {
	m, err := s.Get(userID, memberID)
	if err != nil {
		return nil, err
	}
	m.LimitPerTx = perTx
	m.LimitDaily = daily
	m.LimitWeekly = weekly
	m.LimitMonthly = monthly
	if err := s.db.Save(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// SetAllowance overwrites the member's allowance balance.
func (s *MemberService) SetAllowance(userID uint, memberID string, amount float64) (*models.Member, error) {
	m, err := s.Get(userID, memberID)
	if err != nil {
		return nil, err
	}
	m.Allowance = amount
	if err := s.db.Save(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// Freeze blocks the member's spending. days of 0 freezes permanently;
// otherwise only 1, 2, 7 and 14 day freezes are accepted.
func (s *MemberService) Freeze(userID uint, memberID string, days int, now time.Time) (*models.Member, error) {
	switch days {
	case 0, 1, 2, 7, 14:
	default:
		return nil, ErrInvalidFreezeDays
	}
	m, err := s.Get(userID, memberID)
	if err != nil {
		return nil, err
	}
	m.Frozen = true
	from := now
	if days == 0 {
		m.FrozenUntil = nil
	} else {
		until := now.AddDate(0, 0, days)
		m.FrozenUntil = &until
	}
	appendFreezeEvent(m, models.FreezeEvent{Kind: "freeze", From: &from, Until: m.FrozenUntil, At: &from})
	if err := s.db.Save(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// Unfreeze lifts a freeze early.
func (s *MemberService) Unfreeze(userID uint, memberID string, now time.Time) (*models.Member, error) {
	m, err := s.Get(userID, memberID)
	if err != nil {
		return nil, err
	}
	if !m.Frozen {
		return nil, ErrNotFrozen
	}
	m.Frozen = false
	m.FrozenUntil = nil
	appendFreezeEvent(m, models.FreezeEvent{Kind: "unfreeze", At: &now})
	if err := s.db.Save(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// FreezeStatus describes the current freeze state of a member.
type FreezeStatus struct {
	Frozen    bool                 `json:"frozen"`
	Permanent bool                 `json:"permanent"`
	Until     *time.Time           `json:"until,omitempty"`
	History   []models.FreezeEvent `json:"history"`
}

// Status reports the freeze state, lazily lifting a freeze whose deadline
// has passed. The auto-unfreeze is persisted and appended to the history.
func (s *MemberService) Status(userID uint, memberID string, now time.Time) (*FreezeStatus, error) {
	m, err := s.Get(userID, memberID)
	if err != nil {
		return nil, err
	}
	if m.Frozen && m.FrozenUntil != nil && !now.Before(*m.FrozenUntil) {
		unfreezeLapsed(m, now)
		if err := s.db.Save(m).Error; err != nil {
			return nil, err
		}
	}
	return &FreezeStatus{
		Frozen:    m.Frozen,
		Permanent: m.Frozen && m.FrozenUntil == nil,
		Until:     m.FrozenUntil,
		History:   freezeHistory(m),
	}, nil
}

// unfreezeLapsed clears an expired freeze in memory and records the
// implicit event. The caller persists the member.
func unfreezeLapsed(m *models.Member, now time.Time) {
	m.Frozen = false
	m.FrozenUntil = nil
	appendFreezeEvent(m, models.FreezeEvent{Kind: "auto_unfreeze", At: &now})
}

func appendFreezeEvent(m *models.Member, ev models.FreezeEvent) {
	events := freezeHistory(m)
	events = append(events, ev)
	if b, err := json.Marshal(events); err == nil {
		m.FreezeHistory = string(b)
	}
}

func freezeHistory(m *models.Member) []models.FreezeEvent {
	var events []models.FreezeEvent
	if m.FreezeHistory != "" {
		_ = json.Unmarshal([]byte(m.FreezeHistory), &events)
	}
	return events
}

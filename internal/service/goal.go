package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alsultanqa/mini-back/internal/models"
)

var ErrGoalNotFound = errors.New("goal not found")

// GoalService manages savings goals. Contributions are bookkeeping only;
// they do not move wallet money.
type GoalService struct {
	db *gorm.DB
}

func NewGoalService(db *gorm.DB) *GoalService {
	return &GoalService{db: db}
}

func (s *GoalService) Create(userID uint, title string, target float64, months int) (*models.Goal, error) {
	if months < 1 {
		months = 1
	}
	g := models.Goal{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        title,
		TargetAmount: target,
		TargetMonths: months,
	}
	if err := s.db.Create(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GoalService) List(userID uint) ([]models.Goal, error) {
	var gs []models.Goal
	err := s.db.Where("user_id = ?", userID).Order("created_at asc").Find(&gs).Error
	return gs, err
}

func (s *GoalService) Get(userID uint, goalID string) (*models.Goal, error) {
	var g models.Goal
	err := s.db.Where("user_id = ? AND id = ?", userID, goalID).First(&g).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GoalService) Delete(userID uint, goalID string) error {
	res := s.db.Where("user_id = ? AND id = ?", userID, goalID).Delete(&models.Goal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}

// Contribute adds to the goal's saved amount. Over-saving past the target
// is allowed; the projection clamps progress at 100%.
func (s *GoalService) Contribute(userID uint, goalID string, amount float64) (*models.Goal, error) {
	g, err := s.Get(userID, goalID)
	if err != nil {
		return nil, err
	}
	g.SavedAmount += amount
	if err := s.db.Save(g).Error; err != nil {
		return nil, err
	}
	return g, nil
}

package repository

import (
	"errors"
	"fmt"

	"github.com/aliirsyaadn/mindful-death/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserDataRepository stores durable per-user data and the user's goals.
type UserDataRepository interface {
	GetUserData(userID string) (*models.UserData, error)
	SaveUserData(data *models.UserData) error
	ClearUserData(userID string) error

	ListGoals(userID string) ([]models.Goal, error)
	GetGoal(userID, goalID string) (*models.Goal, error)
	CreateGoal(goal *models.Goal) error
	UpdateGoal(goal *models.Goal) error
	DeleteGoal(userID, goalID string) error
}

type userDataRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserDataRepository creates a gorm-backed UserDataRepository.
func NewUserDataRepository(db *gorm.DB, log *zap.Logger) UserDataRepository {
	return &userDataRepository{db: db, log: log.Named("user_data_repository")}
}

// GetUserData retrieves the user's record with goals preloaded, or (nil, nil) when absent.
func (r *userDataRepository) GetUserData(userID string) (*models.UserData, error) {
	var data models.UserData
	err := r.db.Preload("Goals", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	}).First(&data, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("No user data found", zap.String("user_id", userID))
			return nil, nil
		}
		r.log.Error("Failed to retrieve user data", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user data for userID %s: %w", userID, err)
	}
	return &data, nil
}

// SaveUserData upserts the record itself. Goals are written through the goal methods only.
func (r *userDataRepository) SaveUserData(data *models.UserData) error {
	if data == nil {
		return errors.New("user data cannot be nil")
	}
	if data.UserID == "" {
		return errors.New("user ID cannot be empty")
	}
	err := r.db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(data).Error
	if err != nil {
		r.log.Error("Failed to save user data", zap.String("user_id", data.UserID), zap.Error(err))
		return fmt.Errorf("failed to save user data for userID %s: %w", data.UserID, err)
	}
	r.log.Info("Saved user data", zap.String("user_id", data.UserID))
	return nil
}

// ClearUserData removes the record and all of the user's goals.
func (r *userDataRepository) ClearUserData(userID string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Goal{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.UserData{}).Error
	})
	if err != nil {
		r.log.Error("Failed to clear user data", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to clear user data for userID %s: %w", userID, err)
	}
	r.log.Info("Cleared user data", zap.String("user_id", userID))
	return nil
}

// ListGoals returns the user's goals oldest first; an empty slice when there are none.
func (r *userDataRepository) ListGoals(userID string) ([]models.Goal, error) {
	goals := []models.Goal{}
	if err := r.db.Where("user_id = ?", userID).Order("created_at asc").Find(&goals).Error; err != nil {
		r.log.Error("Failed to list goals", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list goals for userID %s: %w", userID, err)
	}
	return goals, nil
}

// GetGoal returns (nil, nil) when the goal does not exist or belongs to another user.
func (r *userDataRepository) GetGoal(userID, goalID string) (*models.Goal, error) {
	var goal models.Goal
	err := r.db.First(&goal, "id = ? AND user_id = ?", goalID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("Failed to retrieve goal", zap.String("goal_id", goalID), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve goal %s: %w", goalID, err)
	}
	return &goal, nil
}

func (r *userDataRepository) CreateGoal(goal *models.Goal) error {
	if goal == nil {
		return errors.New("goal cannot be nil")
	}
	if goal.ID == "" || goal.UserID == "" {
		return errors.New("goal must have an ID and a user ID")
	}
	if err := r.db.Create(goal).Error; err != nil {
		r.log.Error("Failed to create goal", zap.String("user_id", goal.UserID), zap.Error(err))
		return fmt.Errorf("failed to create goal '%s' for userID %s: %w", goal.Title, goal.UserID, err)
	}
	r.log.Info("Created goal", zap.String("user_id", goal.UserID), zap.String("goal_id", goal.ID))
	return nil
}

func (r *userDataRepository) UpdateGoal(goal *models.Goal) error {
	if goal == nil {
		return errors.New("goal cannot be nil")
	}
	if goal.ID == "" {
		return errors.New("goal ID must be provided for update")
	}
	if err := r.db.Save(goal).Error; err != nil {
		r.log.Error("Failed to update goal", zap.String("goal_id", goal.ID), zap.Error(err))
		return fmt.Errorf("failed to update goal %s: %w", goal.ID, err)
	}
	return nil
}

func (r *userDataRepository) DeleteGoal(userID, goalID string) error {
	if err := r.db.Where("id = ? AND user_id = ?", goalID, userID).Delete(&models.Goal{}).Error; err != nil {
		r.log.Error("Failed to delete goal", zap.String("goal_id", goalID), zap.Error(err))
		return fmt.Errorf("failed to delete goal %s: %w", goalID, err)
	}
	r.log.Info("Deleted goal", zap.String("user_id", userID), zap.String("goal_id", goalID))
	return nil
}

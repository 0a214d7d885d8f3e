package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aliirsyaadn/mindful-death/models"
	"github.com/aliirsyaadn/mindful-death/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
	ErrInvalidGoal  = errors.New("invalid goal")
)

const goalDateLayout = "2006-01-02"

// GoalService manages the user's life goal list.
type GoalService interface {
	ListGoals(userID string) ([]models.Goal, error)
	AddGoal(userID string, input models.GoalInput) (*models.Goal, error)
	UpdateGoal(userID, goalID string, patch models.GoalPatch) (*models.Goal, error)
	DeleteGoal(userID, goalID string) error
	ToggleGoalComplete(userID, goalID string) (*models.Goal, error)
	Summary(userID string) (*models.GoalSummary, error)
}

type goalService struct {
	repo  repository.UserDataRepository
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// NewGoalService creates a new instance of GoalService.
func NewGoalService(repo repository.UserDataRepository, log *zap.Logger) GoalService {
	return &goalService{
		repo:  repo,
		log:   log.Named("goal_service"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func validateGoalFields(title string, category models.GoalCategory, priority models.GoalPriority, targetAge *int, targetDate *string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidGoal)
	}
	if !category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidGoal, category)
	}
	if priority != "" && !priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidGoal, priority)
	}
	if targetAge != nil && *targetAge <= 0 {
		return fmt.Errorf("%w: target age must be positive", ErrInvalidGoal)
	}
	if targetDate != nil && *targetDate != "" {
		if _, err := time.Parse(goalDateLayout, *targetDate); err != nil {
			return fmt.Errorf("%w: target date must be YYYY-MM-DD", ErrInvalidGoal)
		}
	}
	return nil
}

func (s *goalService) ListGoals(userID string) ([]models.Goal, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty")
	}
	goals, err := s.repo.ListGoals(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

// AddGoal validates input and stores a new, not yet completed goal. Priority defaults to medium.
func (s *goalService) AddGoal(userID string, input models.GoalInput) (*models.Goal, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty")
	}
	if err := validateGoalFields(input.Title, input.Category, input.Priority, input.TargetAge, input.TargetDate); err != nil {
		return nil, err
	}
	if err := s.ensureUser(userID); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = models.GoalPriorityMedium
	}
	now := s.now()
	goal := &models.Goal{
		ID:          s.newID(),
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		TargetAge:   input.TargetAge,
		TargetDate:  input.TargetDate,
		Category:    input.Category,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateGoal(goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	s.log.Info("Goal added", zap.String("user_id", userID), zap.String("goal_id", goal.ID), zap.String("category", string(goal.Category)))
	return goal, nil
}

// ensureUser creates an empty user record so goals always have an owner row.
func (s *goalService) ensureUser(userID string) error {
	data, err := s.repo.GetUserData(userID)
	if err != nil {
		return fmt.Errorf("failed to load user data: %w", err)
	}
	if data != nil {
		return nil
	}
	if err := s.repo.SaveUserData(models.NewUserData(userID)); err != nil {
		return fmt.Errorf("failed to create user data: %w", err)
	}
	return nil
}

func (s *goalService) getGoal(userID, goalID string) (*models.Goal, error) {
	goal, err := s.repo.GetGoal(userID, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve goal: %w", err)
	}
	if goal == nil {
		return nil, fmt.Errorf("%w: %s", ErrGoalNotFound, goalID)
	}
	return goal, nil
}

// UpdateGoal applies the non-nil fields of patch.
func (s *goalService) UpdateGoal(userID, goalID string, patch models.GoalPatch) (*models.Goal, error) {
	goal, err := s.getGoal(userID, goalID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		goal.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		goal.Description = *patch.Description
	}
	if patch.TargetAge != nil {
		goal.TargetAge = patch.TargetAge
	}
	if patch.TargetDate != nil {
		goal.TargetDate = patch.TargetDate
	}
	if patch.Category != nil {
		goal.Category = *patch.Category
	}
	if patch.Priority != nil {
		goal.Priority = *patch.Priority
	}
	if patch.Completed != nil {
		goal.Completed = *patch.Completed
	}
	if err := validateGoalFields(goal.Title, goal.Category, goal.Priority, goal.TargetAge, goal.TargetDate); err != nil {
		return nil, err
	}

	goal.UpdatedAt = s.now()
	if err := s.repo.UpdateGoal(goal); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	return goal, nil
}

func (s *goalService) DeleteGoal(userID, goalID string) error {
	if _, err := s.getGoal(userID, goalID); err != nil {
		return err
	}
	if err := s.repo.DeleteGoal(userID, goalID); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

func (s *goalService) ToggleGoalComplete(userID, goalID string) (*models.Goal, error) {
	goal, err := s.getGoal(userID, goalID)
	if err != nil {
		return nil, err
	}
	goal.Completed = !goal.Completed
	goal.UpdatedAt = s.now()
	if err := s.repo.UpdateGoal(goal); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	s.log.Info("Goal toggled", zap.String("user_id", userID), zap.String("goal_id", goalID), zap.Bool("completed", goal.Completed))
	return goal, nil
}

func (s *goalService) Summary(userID string) (*models.GoalSummary, error) {
	goals, err := s.ListGoals(userID)
	if err != nil {
		return nil, err
	}
	summary := SummarizeGoals(userID, goals, s.now())
	return &summary, nil
}

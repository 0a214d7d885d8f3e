package services

import (
	"errors"
	"fmt"

	"github.com/aliirsyaadn/mindful-death/models"
	"github.com/aliirsyaadn/mindful-death/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var ErrInvalidSetup = errors.New("invalid quick setup")

// QuickSetupInput is the minimal profile captured before the full assessment.
type QuickSetupInput struct {
	Age       int    `json:"age" binding:"required"`
	Gender    string `json:"gender" binding:"required"`
	BirthDate string `json:"birth_date"`
}

// UserService reads and writes the durable per-user record.
type UserService interface {
	QuickSetup(userID string, input QuickSetupInput) (*models.UserData, error)
	Get(userID string) (*models.UserData, error)
	Clear(userID string) error
}

type userService struct {
	users    repository.UserDataRepository
	sessions repository.SessionRepository
	log      *zap.Logger
}

func NewUserService(users repository.UserDataRepository, sessions repository.SessionRepository, log *zap.Logger) UserService {
	return &userService{users: users, sessions: sessions, log: log.Named("user_service")}
}

// QuickSetup replaces the stored profile with age and gender so later sessions start pre-filled.
func (s *userService) QuickSetup(userID string, input QuickSetupInput) (*models.UserData, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty")
	}
	if input.Age <= 0 || input.Age > 120 {
		return nil, fmt.Errorf("%w: age must be between 1 and 120", ErrInvalidSetup)
	}
	if input.Gender != models.GenderMale && input.Gender != models.GenderFemale {
		return nil, fmt.Errorf("%w: gender must be %q or %q", ErrInvalidSetup, models.GenderMale, models.GenderFemale)
	}
	if input.BirthDate != "" {
		if _, ok := ParseBirthDate(input.BirthDate); !ok {
			return nil, fmt.Errorf("%w: birth date must be YYYY-MM-DD", ErrInvalidSetup)
		}
	}

	data, err := s.users.GetUserData(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user data: %w", err)
	}
	if data == nil {
		data = models.NewUserData(userID)
	}
	data.PlanType = models.PlanTypeDeath
	data.BirthDate = input.BirthDate
	data.Profile = datatypes.NewJSONType(&models.Profile{Age: input.Age, Gender: input.Gender})

	if err := s.users.SaveUserData(data); err != nil {
		return nil, fmt.Errorf("failed to save quick setup: %w", err)
	}
	s.log.Info("Quick setup saved", zap.String("user_id", userID), zap.Int("age", input.Age), zap.String("gender", input.Gender))
	return data, nil
}

// Get returns (nil, nil) for an unknown user.
func (s *userService) Get(userID string) (*models.UserData, error) {
	data, err := s.users.GetUserData(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user data: %w", err)
	}
	return data, nil
}

// Clear removes the user's durable data and any in-progress session.
func (s *userService) Clear(userID string) error {
	if err := s.sessions.ClearSession(userID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if err := s.users.ClearUserData(userID); err != nil {
		return fmt.Errorf("failed to clear user data: %w", err)
	}
	s.log.Info("User data cleared", zap.String("user_id", userID))
	return nil
}

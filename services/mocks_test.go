package services

import (
	"github.com/aliirsyaadn/mindful-death/models"

	"github.com/stretchr/testify/mock"
)

// MockSessionRepository is a mock type for the SessionRepository interface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) GetSession(userID string) (*models.AssessmentSession, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssessmentSession), args.Error(1)
}

func (m *MockSessionRepository) SaveSession(session *models.AssessmentSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockSessionRepository) ClearSession(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

// MockUserDataRepository is a mock type for the UserDataRepository interface
type MockUserDataRepository struct {
	mock.Mock
}

func (m *MockUserDataRepository) GetUserData(userID string) (*models.UserData, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserData), args.Error(1)
}

func (m *MockUserDataRepository) SaveUserData(data *models.UserData) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockUserDataRepository) ClearUserData(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserDataRepository) ListGoals(userID string) ([]models.Goal, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Goal), args.Error(1)
}

func (m *MockUserDataRepository) GetGoal(userID, goalID string) (*models.Goal, error) {
	args := m.Called(userID, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Goal), args.Error(1)
}

func (m *MockUserDataRepository) CreateGoal(goal *models.Goal) error {
	args := m.Called(goal)
	return args.Error(0)
}

func (m *MockUserDataRepository) UpdateGoal(goal *models.Goal) error {
	args := m.Called(goal)
	return args.Error(0)
}

func (m *MockUserDataRepository) DeleteGoal(userID, goalID string) error {
	args := m.Called(userID, goalID)
	return args.Error(0)
}

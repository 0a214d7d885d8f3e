package repository

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/aliirsyaadn/mindful-death/models"

	"go.uber.org/zap"
)

// memorySessionRepository keeps sessions in process memory. Values are cloned on the way in and out
// so callers can never mutate stored state.
type memorySessionRepository struct {
	sessions map[string]*models.AssessmentSession
	mu       sync.RWMutex
	log      *zap.Logger
}

// NewMemorySessionRepository creates an in-memory SessionRepository.
func NewMemorySessionRepository(log *zap.Logger) SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]*models.AssessmentSession),
		log:      log.Named("memory_session_repository"),
	}
}

func (r *memorySessionRepository) GetSession(userID string) (*models.AssessmentSession, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[userID]
	if !ok {
		return nil, nil
	}
	return session.Clone(), nil
}

func (r *memorySessionRepository) SaveSession(session *models.AssessmentSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if session.UserID == "" {
		return errors.New("user ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.UserID] = session.Clone()
	r.log.Debug("Saved session", zap.String("user_id", session.UserID), zap.String("current_question_id", session.Cursor()))
	return nil
}

func (r *memorySessionRepository) ClearSession(userID string) error {
	if userID == "" {
		return errors.New("user ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, userID)
	r.log.Info("Cleared session", zap.String("user_id", userID))
	return nil
}

// memoryUserDataRepository keeps user records and goals in process memory.
type memoryUserDataRepository struct {
	users map[string]*models.UserData
	goals map[string][]models.Goal // by user ID
	mu    sync.RWMutex
	log   *zap.Logger
}

// NewMemoryUserDataRepository creates an in-memory UserDataRepository.
func NewMemoryUserDataRepository(log *zap.Logger) UserDataRepository {
	return &memoryUserDataRepository{
		users: make(map[string]*models.UserData),
		goals: make(map[string][]models.Goal),
		log:   log.Named("memory_user_data_repository"),
	}
}

func (r *memoryUserDataRepository) GetUserData(userID string) (*models.UserData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.users[userID]
	if !ok {
		return nil, nil
	}
	data := *stored
	data.Goals = append([]models.Goal{}, r.goals[userID]...)
	return &data, nil
}

func (r *memoryUserDataRepository) SaveUserData(data *models.UserData) error {
	if data == nil {
		return errors.New("user data cannot be nil")
	}
	if data.UserID == "" {
		return errors.New("user ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	stored := *data
	stored.Goals = nil
	if existing, ok := r.users[data.UserID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.users[data.UserID] = &stored
	r.log.Info("Saved user data", zap.String("user_id", data.UserID))
	return nil
}

func (r *memoryUserDataRepository) ClearUserData(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, userID)
	delete(r.goals, userID)
	r.log.Info("Cleared user data", zap.String("user_id", userID))
	return nil
}

func (r *memoryUserDataRepository) ListGoals(userID string) ([]models.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	goals := append([]models.Goal{}, r.goals[userID]...)
	sort.SliceStable(goals, func(i, j int) bool { return goals[i].CreatedAt.Before(goals[j].CreatedAt) })
	return goals, nil
}

func (r *memoryUserDataRepository) GetGoal(userID, goalID string) (*models.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.goals[userID] {
		if g.ID == goalID {
			goal := g
			return &goal, nil
		}
	}
	return nil, nil
}

func (r *memoryUserDataRepository) CreateGoal(goal *models.Goal) error {
	if goal == nil {
		return errors.New("goal cannot be nil")
	}
	if goal.ID == "" || goal.UserID == "" {
		return errors.New("goal must have an ID and a user ID")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = now
	}
	goal.UpdatedAt = now
	r.goals[goal.UserID] = append(r.goals[goal.UserID], *goal)
	r.log.Info("Created goal", zap.String("user_id", goal.UserID), zap.String("goal_id", goal.ID))
	return nil
}

func (r *memoryUserDataRepository) UpdateGoal(goal *models.Goal) error {
	if goal == nil {
		return errors.New("goal cannot be nil")
	}
	if goal.ID == "" {
		return errors.New("goal ID must be provided for update")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	goals := r.goals[goal.UserID]
	for i := range goals {
		if goals[i].ID == goal.ID {
			goal.UpdatedAt = time.Now()
			goals[i] = *goal
			return nil
		}
	}
	return errors.New("goal not found for update")
}

func (r *memoryUserDataRepository) DeleteGoal(userID, goalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	goals := r.goals[userID]
	for i := range goals {
		if goals[i].ID == goalID {
			r.goals[userID] = append(goals[:i:i], goals[i+1:]...)
			r.log.Info("Deleted goal", zap.String("user_id", userID), zap.String("goal_id", goalID))
			return nil
		}
	}
	return nil
}

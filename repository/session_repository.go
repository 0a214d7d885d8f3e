package repository

import (
	"errors"
	"fmt"

	"github.com/aliirsyaadn/mindful-death/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository stores at most one in-progress assessment session per user.
type SessionRepository interface {
	GetSession(userID string) (*models.AssessmentSession, error)
	SaveSession(session *models.AssessmentSession) error
	ClearSession(userID string) error
}

type sessionRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSessionRepository creates a gorm-backed SessionRepository.
func NewSessionRepository(db *gorm.DB, log *zap.Logger) SessionRepository {
	return &sessionRepository{db: db, log: log.Named("session_repository")}
}

// GetSession returns (nil, nil) when the user has no session.
func (r *sessionRepository) GetSession(userID string) (*models.AssessmentSession, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	var session models.AssessmentSession
	err := r.db.First(&session, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("No session found", zap.String("user_id", userID))
			return nil, nil
		}
		r.log.Error("Failed to fetch session", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch session for userID %s: %w", userID, err)
	}
	return &session, nil
}

// SaveSession inserts or replaces the user's session.
func (r *sessionRepository) SaveSession(session *models.AssessmentSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if session.UserID == "" {
		return errors.New("user ID cannot be empty")
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(session).Error
	if err != nil {
		r.log.Error("Failed to save session", zap.String("user_id", session.UserID), zap.Error(err))
		return fmt.Errorf("failed to save session for userID %s: %w", session.UserID, err)
	}
	r.log.Debug("Saved session",
		zap.String("user_id", session.UserID),
		zap.String("flow_id", session.FlowID),
		zap.String("current_question_id", session.Cursor()),
	)
	return nil
}

// ClearSession deletes the user's session; clearing a missing session is not an error.
func (r *sessionRepository) ClearSession(userID string) error {
	if userID == "" {
		return errors.New("user ID cannot be empty")
	}
	err := r.db.Where("user_id = ?", userID).Delete(&models.AssessmentSession{}).Error
	if err != nil {
		r.log.Error("Failed to clear session", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to clear session for userID %s: %w", userID, err)
	}
	r.log.Info("Cleared session", zap.String("user_id", userID))
	return nil
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// AssessmentSession is the persisted record of one in-progress questionnaire run for a user.
type AssessmentSession struct {
	UserID            string                      `json:"user_id" gorm:"primaryKey"`
	FlowID            string                      `json:"flow_id" gorm:"not null"`
	FlowVersion       string                      `json:"flow_version"`
	CurrentQuestionID *string                     `json:"current_question_id"`
	Answers           datatypes.JSONType[Answers] `json:"answers"`
	StartedAt         time.Time                   `json:"started_at"`
	LastUpdatedAt     time.Time                   `json:"last_updated_at"`
	CompletedAt       *time.Time                  `json:"completed_at,omitempty"`
}

// TableName specifies the table name for the AssessmentSession model.
func (AssessmentSession) TableName() string {
	return "assessment_sessions"
}

// AnswerSet returns the session's answers, never nil.
func (s *AssessmentSession) AnswerSet() Answers {
	a := s.Answers.Data()
	if a == nil {
		return Answers{}
	}
	return a
}

func (s *AssessmentSession) SetAnswers(a Answers) {
	s.Answers = datatypes.NewJSONType(a)
}

// Cursor returns the current question id, or "" when none is set.
func (s *AssessmentSession) Cursor() string {
	if s.CurrentQuestionID == nil {
		return ""
	}
	return *s.CurrentQuestionID
}

func (s *AssessmentSession) SetCursor(questionID string) {
	if questionID == "" {
		s.CurrentQuestionID = nil
		return
	}
	id := questionID
	s.CurrentQuestionID = &id
}

// Clone deep-copies the session so derived states never share the answer map.
func (s *AssessmentSession) Clone() *AssessmentSession {
	if s == nil {
		return nil
	}
	c := *s
	c.SetAnswers(s.AnswerSet().Clone())
	if s.CurrentQuestionID != nil {
		c.SetCursor(*s.CurrentQuestionID)
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

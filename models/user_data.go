package models

import (
	"time"

	"gorm.io/datatypes"
)

// PlanType is kept for compatibility with stored data; only "death" exists.
type PlanType string

const PlanTypeDeath PlanType = "death"

// Profile is the demographic and lifestyle snapshot folded out of a completed assessment.
type Profile struct {
	Age              int    `json:"age"`
	Gender           string `json:"gender"`
	Province         string `json:"province,omitempty"`
	Smoking          string `json:"smoking,omitempty"`
	Exercise         string `json:"exercise,omitempty"`
	BMI              string `json:"bmi,omitempty"`
	Sleep            string `json:"sleep,omitempty"`
	Stress           string `json:"stress,omitempty"`
	Diet             string `json:"diet,omitempty"`
	Alcohol          string `json:"alcohol,omitempty"`
	SocialConnection string `json:"social_connection,omitempty"`
}

// ExtendedAssessment keeps the raw answers next to the result they produced.
type ExtendedAssessment struct {
	Answers     Answers          `json:"answers"`
	Result      AssessmentResult `json:"result"`
	CompletedAt time.Time        `json:"completed_at"`
}

// UserData is the durable per-user record outliving any single assessment session.
type UserData struct {
	UserID             string                                  `json:"user_id" gorm:"primaryKey"`
	PlanType           PlanType                                `json:"plan_type" gorm:"type:varchar(20);default:'death'"`
	BirthDate          string                                  `json:"birth_date,omitempty"` // YYYY-MM-DD
	Profile            datatypes.JSONType[*Profile]            `json:"profile"`
	LifeEstimate       datatypes.JSONType[*LifeEstimate]       `json:"life_estimate"`
	ExtendedAssessment datatypes.JSONType[*ExtendedAssessment] `json:"extended_assessment"`
	Goals              []Goal                                  `json:"goals" gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
	CompletedAt        *time.Time                              `json:"completed_at,omitempty"`
	CreatedAt          time.Time                               `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time                               `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the UserData model.
func (UserData) TableName() string {
	return "user_data"
}

// NewUserData returns an empty record for userID.
func NewUserData(userID string) *UserData {
	return &UserData{
		UserID:             userID,
		PlanType:           PlanTypeDeath,
		Profile:            datatypes.NewJSONType[*Profile](nil),
		LifeEstimate:       datatypes.NewJSONType[*LifeEstimate](nil),
		ExtendedAssessment: datatypes.NewJSONType[*ExtendedAssessment](nil),
		Goals:              []Goal{},
	}
}

// HasCompletedAssessment reports whether a life estimate has been stored.
func (u *UserData) HasCompletedAssessment() bool {
	return u != nil && u.LifeEstimate.Data() != nil
}

// InitResponse defines the structure for the /api/init endpoint response.
type InitResponse struct {
	UserID                 string `json:"user_id"`
	IsNew                  bool   `json:"is_new"`
	HasCompletedAssessment bool   `json:"has_completed_assessment"`
	HasSession             bool   `json:"has_session"`
	FlowID                 string `json:"flow_id"`
	FlowVersion            string `json:"flow_version"`
}

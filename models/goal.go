package models

import (
	"time"
)

// GoalCategory defines the life area a goal belongs to.
type GoalCategory string

const (
	GoalCategoryCareer     GoalCategory = "karir"
	GoalCategoryFamily     GoalCategory = "keluarga"
	GoalCategoryHealth     GoalCategory = "kesehatan"
	GoalCategoryFinance    GoalCategory = "keuangan"
	GoalCategorySpiritual  GoalCategory = "spiritual"
	GoalCategoryEducation  GoalCategory = "pendidikan"
	GoalCategoryExperience GoalCategory = "pengalaman"
	GoalCategoryLegacy     GoalCategory = "warisan"
)

// GoalCategories lists every category in display order.
var GoalCategories = []GoalCategory{
	GoalCategoryCareer,
	GoalCategoryFamily,
	GoalCategoryHealth,
	GoalCategoryFinance,
	GoalCategorySpiritual,
	GoalCategoryEducation,
	GoalCategoryExperience,
	GoalCategoryLegacy,
}

func (c GoalCategory) Valid() bool {
	for _, known := range GoalCategories {
		if c == known {
			return true
		}
	}
	return false
}

// GoalPriority defines how urgent a goal is.
type GoalPriority string

const (
	GoalPriorityLow    GoalPriority = "low"
	GoalPriorityMedium GoalPriority = "medium"
	GoalPriorityHigh   GoalPriority = "high"
)

func (p GoalPriority) Valid() bool {
	return p == GoalPriorityLow || p == GoalPriorityMedium || p == GoalPriorityHigh
}

// Goal is one entry of a user's life goal list.
type Goal struct {
	ID          string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string       `json:"-" gorm:"index;not null"`
	Title       string       `json:"title" gorm:"not null"`
	Description string       `json:"description,omitempty" gorm:"type:text"`
	TargetAge   *int         `json:"target_age,omitempty"`
	TargetDate  *string      `json:"target_date,omitempty"` // YYYY-MM-DD
	Category    GoalCategory `json:"category" gorm:"type:varchar(50);not null"`
	Priority    GoalPriority `json:"priority,omitempty" gorm:"type:varchar(20)"`
	Completed   bool         `json:"completed" gorm:"default:false"`
	CreatedAt   time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Goal model.
func (Goal) TableName() string {
	return "goals"
}

// GoalPatch carries a partial update; nil fields are left untouched.
type GoalPatch struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	TargetAge   *int          `json:"target_age"`
	TargetDate  *string       `json:"target_date"`
	Category    *GoalCategory `json:"category"`
	Priority    *GoalPriority `json:"priority"`
	Completed   *bool         `json:"completed"`
}

// GoalSummary aggregates a user's goal list.
type GoalSummary struct {
	UserID         string               `json:"user_id"`
	TotalGoals     int                  `json:"total_goals"`
	CompletedGoals int                  `json:"completed_goals"`
	CompletionRate float64              `json:"completion_rate"`
	ByCategory     map[GoalCategory]int `json:"by_category"`
	ByPriority     map[GoalPriority]int `json:"by_priority"`
	GeneratedAt    time.Time            `json:"generated_at"`
}

// GoalInput is the payload for creating a goal.
type GoalInput struct {
	Title       string       `json:"title" binding:"required"`
	Description string       `json:"description"`
	TargetAge   *int         `json:"target_age"`
	TargetDate  *string      `json:"target_date"`
	Category    GoalCategory `json:"category" binding:"required"`
	Priority    GoalPriority `json:"priority"`
}

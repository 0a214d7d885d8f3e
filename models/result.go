package models

import "time"

// Confidence is a coarse tier describing how much of the factor-bearing questionnaire was covered.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// AppliedFactor is one matched factor as it contributed to a result.
type AppliedFactor struct {
	FactorID        string      `json:"factor_id"`
	QuestionID      string      `json:"question_id"`
	QuestionLabel   string      `json:"question_label"`
	AnswerValue     AnswerValue `json:"answer_value"`
	AnswerLabel     string      `json:"answer_label"`
	BaseAdjustment  float64     `json:"base_adjustment"`
	FinalAdjustment float64     `json:"final_adjustment"`
	Citations       []Citation  `json:"citations"`
}

// AssessmentResult is the scoring output of one completed answer set. It is never mutated after creation.
type AssessmentResult struct {
	BaseLifeExpectancy     float64         `json:"base_life_expectancy"`
	TotalAdjustment        float64         `json:"total_adjustment"`
	AdjustedLifeExpectancy float64         `json:"adjusted_life_expectancy"`
	AppliedFactors         []AppliedFactor `json:"applied_factors"`
	PositiveFactors        []AppliedFactor `json:"positive_factors"`
	NegativeFactors        []AppliedFactor `json:"negative_factors"`
	Confidence             Confidence      `json:"confidence"`
	CalculatedAt           time.Time       `json:"calculated_at"`
}

// LifeEstimate is the countdown view of a result.
type LifeEstimate struct {
	LifeExpectancy    float64 `json:"life_expectancy"`
	YearsRemaining    float64 `json:"years_remaining"`
	DaysRemaining     int64   `json:"days_remaining"`
	DaysLived         int64   `json:"days_lived"`
	TotalDays         int64   `json:"total_days"`
	AdjustmentApplied float64 `json:"adjustment_applied"`
}

// FactorsSummary condenses the positive and negative contributions of a result.
type FactorsSummary struct {
	TotalPositive   float64        `json:"total_positive"`
	TotalNegative   float64        `json:"total_negative"`
	BiggestPositive *AppliedFactor `json:"biggest_positive"`
	BiggestNegative *AppliedFactor `json:"biggest_negative"`
}

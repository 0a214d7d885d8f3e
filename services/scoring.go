package services

import (
	"math"
	"time"

	"github.com/aliirsyaadn/mindful-death/models"
)

const (
	DaysPerYear = 365.25

	QuestionBirthDate = "birth_date"
	QuestionGender    = "gender"
	QuestionProvince  = "province"

	highConfidenceRatio   = 0.7
	mediumConfidenceRatio = 0.4

	birthDateLayout = "2006-01-02"
)

// roundHalfUp rounds to the nearest integer, halves towards positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func round1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

// Calculator turns a complete answer set into an AssessmentResult.
// All methods are pure apart from reading the clock.
type Calculator struct {
	catalog *Catalog
	now     func() time.Time
}

// NewCalculator uses time.Now when now is nil.
func NewCalculator(catalog *Catalog, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{catalog: catalog, now: now}
}

// ParseBirthDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseBirthDate(s string) (time.Time, bool) {
	if t, err := time.Parse(birthDateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// CalculateAge returns completed years since birthDate, never negative.
// An unparseable date yields 0.
func (c *Calculator) CalculateAge(birthDate string) int {
	birth, ok := ParseBirthDate(birthDate)
	if !ok {
		return 0
	}
	today := c.now()
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// BaseLifeExpectancy picks the gender baseline and averages it with a known province record.
func BaseLifeExpectancy(gender, province string) float64 {
	var base float64
	switch gender {
	case models.GenderFemale:
		base = models.LifeExpectancyBaseline.Female
	case models.GenderMale:
		base = models.LifeExpectancyBaseline.Male
	default:
		base = models.LifeExpectancyBaseline.Overall
	}
	if p, ok := models.LookupProvince(province); ok {
		base = (base + p.LifeExpectancy) / 2
	}
	return base
}

// MatchingFactors returns the factors selected by answers, in catalog order.
func (c *Calculator) MatchingFactors(answers models.Answers) []models.AdjustmentFactor {
	var out []models.AdjustmentFactor
	for _, f := range c.catalog.Factors() {
		if f.Matches(answers[f.QuestionID]) {
			out = append(out, f)
		}
	}
	return out
}

// applyAgeModifier scales by the first configured range containing age.
func applyAgeModifier(f models.AdjustmentFactor, age int) float64 {
	for _, m := range f.AgeModifiers {
		if m.Contains(age) {
			return f.Adjustment * m.Multiplier
		}
	}
	return f.Adjustment
}

// applyCompoundEffects multiplies each factor by the multipliers of partners matched in the same set.
// Partners are looked up in the original match set only, so chains do not propagate.
func applyCompoundEffects(matched []models.AdjustmentFactor, adjusted map[string]float64) map[string]float64 {
	present := make(map[string]bool, len(matched))
	for _, f := range matched {
		present[f.ID] = true
	}
	final := make(map[string]float64, len(adjusted))
	for id, v := range adjusted {
		final[id] = v
	}
	for _, f := range matched {
		for _, ce := range f.CompoundWith {
			if present[ce.FactorID] {
				final[f.ID] *= ce.Multiplier
			}
		}
	}
	return final
}

func (c *Calculator) confidence(matched []models.AdjustmentFactor) models.Confidence {
	total := len(c.catalog.FactorQuestionIDs())
	if total == 0 {
		return models.ConfidenceLow
	}
	answered := make(map[string]bool)
	for _, f := range matched {
		answered[f.QuestionID] = true
	}
	ratio := float64(len(answered)) / float64(total)
	switch {
	case ratio >= highConfidenceRatio:
		return models.ConfidenceHigh
	case ratio >= mediumConfidenceRatio:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func (c *Calculator) answerLabel(questionID string, answer models.AnswerValue) string {
	q, ok := c.catalog.QuestionByID(questionID)
	if !ok {
		return answer.String()
	}
	if o, ok := q.OptionFor(answer); ok {
		return o.LabelKey
	}
	return answer.String()
}

// Calculate scores answers. Birth date and gender are expected to be present; the caller guarantees it.
func (c *Calculator) Calculate(answers models.Answers) models.AssessmentResult {
	gender, _ := answers[QuestionGender].AsString()
	province, _ := answers[QuestionProvince].AsString()
	birthDate, _ := answers[QuestionBirthDate].AsString()

	age := c.CalculateAge(birthDate)
	base := BaseLifeExpectancy(gender, province)

	matched := c.MatchingFactors(answers)
	adjusted := make(map[string]float64, len(matched))
	for _, f := range matched {
		adjusted[f.ID] = applyAgeModifier(f, age)
	}
	final := applyCompoundEffects(matched, adjusted)

	result := models.AssessmentResult{
		BaseLifeExpectancy: base,
		AppliedFactors:     make([]models.AppliedFactor, 0, len(matched)),
		PositiveFactors:    []models.AppliedFactor{},
		NegativeFactors:    []models.AppliedFactor{},
		Confidence:         c.confidence(matched),
		CalculatedAt:       c.now(),
	}

	var total float64
	for _, f := range matched {
		questionLabel := f.QuestionID
		if q, ok := c.catalog.QuestionByID(f.QuestionID); ok && q.LabelKey != "" {
			questionLabel = q.LabelKey
		}
		answer := answers[f.QuestionID]
		applied := models.AppliedFactor{
			FactorID:        f.ID,
			QuestionID:      f.QuestionID,
			QuestionLabel:   questionLabel,
			AnswerValue:     answer,
			AnswerLabel:     c.answerLabel(f.QuestionID, answer),
			BaseAdjustment:  f.Adjustment,
			FinalAdjustment: final[f.ID],
			Citations:       c.catalog.CitationsByIDs(f.CitationIDs),
		}
		total += applied.FinalAdjustment

		result.AppliedFactors = append(result.AppliedFactors, applied)
		switch {
		case applied.FinalAdjustment > 0:
			result.PositiveFactors = append(result.PositiveFactors, applied)
		case applied.FinalAdjustment < 0:
			result.NegativeFactors = append(result.NegativeFactors, applied)
		}
	}

	result.TotalAdjustment = round1(total)
	result.AdjustedLifeExpectancy = math.Max(float64(age+1), round1(base+total))
	return result
}

// ToLifeEstimate converts a result into countdown figures using a 365.25-day year.
func (c *Calculator) ToLifeEstimate(result models.AssessmentResult, birthDate string) models.LifeEstimate {
	age := float64(c.CalculateAge(birthDate))
	years := math.Max(0, result.AdjustedLifeExpectancy-age)
	return models.LifeEstimate{
		LifeExpectancy:    result.AdjustedLifeExpectancy,
		YearsRemaining:    years,
		DaysRemaining:     int64(roundHalfUp(years * DaysPerYear)),
		DaysLived:         int64(roundHalfUp(age * DaysPerYear)),
		TotalDays:         int64(roundHalfUp(result.AdjustedLifeExpectancy * DaysPerYear)),
		AdjustmentApplied: result.TotalAdjustment,
	}
}

// FactorsSummary totals the positive and negative contributions and picks the largest of each.
func FactorsSummary(result models.AssessmentResult) models.FactorsSummary {
	var summary models.FactorsSummary
	var pos, neg float64
	for i, f := range result.PositiveFactors {
		pos += f.FinalAdjustment
		if summary.BiggestPositive == nil || f.FinalAdjustment > summary.BiggestPositive.FinalAdjustment {
			summary.BiggestPositive = &result.PositiveFactors[i]
		}
	}
	for i, f := range result.NegativeFactors {
		neg += f.FinalAdjustment
		if summary.BiggestNegative == nil || f.FinalAdjustment < summary.BiggestNegative.FinalAdjustment {
			summary.BiggestNegative = &result.NegativeFactors[i]
		}
	}
	summary.TotalPositive = round1(pos)
	summary.TotalNegative = round1(neg)
	return summary
}

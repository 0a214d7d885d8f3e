package services

import (
	"math"
	"unicode/utf8"

	"github.com/aliirsyaadn/mindful-death/models"
)

// VisibleQuestion pairs a visible question with its owning section.
type VisibleQuestion struct {
	Section  models.Section  `json:"section"`
	Question models.Question `json:"question"`
}

// ValidationError is a machine-readable reason an answer was rejected.
type ValidationError string

const (
	ValidationRequired      ValidationError = "required"
	ValidationMinValue      ValidationError = "min_value"
	ValidationMaxValue      ValidationError = "max_value"
	ValidationMinSelections ValidationError = "min_selections"
	ValidationMaxSelections ValidationError = "max_selections"
	ValidationMaxLength     ValidationError = "max_length"
)

// ValidationResult is the outcome of ValidateAnswer. Error is empty when Valid.
type ValidationResult struct {
	Valid bool            `json:"valid"`
	Error ValidationError `json:"error,omitempty"`
}

func invalid(kind ValidationError) ValidationResult {
	return ValidationResult{Valid: false, Error: kind}
}

var validResult = ValidationResult{Valid: true}

// Progress describes how far through the visible questionnaire a user is.
type Progress struct {
	TotalQuestions      int             `json:"total_questions"`
	AnsweredQuestions   int             `json:"answered_questions"`
	Percentage          int             `json:"percentage"`
	CurrentSectionIndex int             `json:"current_section_index"`
	TotalSections       int             `json:"total_sections"`
	CurrentSection      *models.Section `json:"current_section"`
}

// ValidateAnswer checks required-ness first, then the bounds of the question's input kind.
// Answers of an unexpected kind skip the bounds checks.
func ValidateAnswer(q models.Question, answer models.AnswerValue) ValidationResult {
	if q.Required && answer.IsBlank() {
		return invalid(ValidationRequired)
	}
	if !answer.IsPresent() {
		return validResult
	}

	cfg := q.Config
	switch q.InputType {
	case models.InputNumber, models.InputSlider:
		n, ok := answer.AsNumber()
		if !ok {
			break
		}
		if cfg.Min != nil && n < *cfg.Min {
			return invalid(ValidationMinValue)
		}
		if cfg.Max != nil && n > *cfg.Max {
			return invalid(ValidationMaxValue)
		}
	case models.InputMultiSelect:
		if answer.Kind() != models.AnswerList {
			break
		}
		if cfg.MinSelections != nil && answer.Len() < *cfg.MinSelections {
			return invalid(ValidationMinSelections)
		}
		if cfg.MaxSelections != nil && answer.Len() > *cfg.MaxSelections {
			return invalid(ValidationMaxSelections)
		}
	case models.InputText:
		s, ok := answer.AsString()
		if !ok {
			break
		}
		if cfg.MaxLength != nil && utf8.RuneCountInString(s) > *cfg.MaxLength {
			return invalid(ValidationMaxLength)
		}
	case models.InputSingleSelect, models.InputDate, models.InputBoolean:
		// no bounds beyond required-ness
	}
	return validResult
}

// Navigator derives visibility, ordering, progress and completeness from a catalog and an answer set.
// Nothing is cached: every call recomputes from its arguments.
type Navigator struct {
	catalog *Catalog
}

func NewNavigator(catalog *Catalog) *Navigator {
	return &Navigator{catalog: catalog}
}

// VisibleSections returns the order-sorted sections whose conditions hold.
func (n *Navigator) VisibleSections(answers models.Answers) []models.Section {
	out := make([]models.Section, 0, len(n.catalog.Sections()))
	for _, s := range n.catalog.Sections() {
		if ShouldShow(s, answers) {
			out = append(out, s)
		}
	}
	return out
}

// VisibleQuestionsForSection returns the section's visible questions in order.
// It does not consider the section's own visibility.
func (n *Navigator) VisibleQuestionsForSection(sectionID string, answers models.Answers) []models.Question {
	qs := n.catalog.QuestionsBySection(sectionID)
	out := make([]models.Question, 0, len(qs))
	for _, q := range qs {
		if ShouldShow(q, answers) {
			out = append(out, q)
		}
	}
	return out
}

// AllVisibleQuestions flattens visible questions of visible sections. Its order is the traversal order.
func (n *Navigator) AllVisibleQuestions(answers models.Answers) []VisibleQuestion {
	var out []VisibleQuestion
	for _, s := range n.VisibleSections(answers) {
		for _, q := range n.VisibleQuestionsForSection(s.ID, answers) {
			out = append(out, VisibleQuestion{Section: s, Question: q})
		}
	}
	return out
}

func indexOf(visible []VisibleQuestion, questionID string) int {
	for i, vq := range visible {
		if vq.Question.ID == questionID {
			return i
		}
	}
	return -1
}

// FirstQuestion returns nil when nothing is visible.
func (n *Navigator) FirstQuestion(answers models.Answers) *VisibleQuestion {
	visible := n.AllVisibleQuestions(answers)
	if len(visible) == 0 {
		return nil
	}
	return &visible[0]
}

// NextQuestion returns nil at the end of the list or when currentID is not visible.
func (n *Navigator) NextQuestion(currentID string, answers models.Answers) *VisibleQuestion {
	visible := n.AllVisibleQuestions(answers)
	i := indexOf(visible, currentID)
	if i == -1 || i >= len(visible)-1 {
		return nil
	}
	return &visible[i+1]
}

// PreviousQuestion returns nil at the start of the list or when currentID is not visible.
func (n *Navigator) PreviousQuestion(currentID string, answers models.Answers) *VisibleQuestion {
	visible := n.AllVisibleQuestions(answers)
	i := indexOf(visible, currentID)
	if i <= 0 {
		return nil
	}
	return &visible[i-1]
}

// FirstUnansweredQuestion is the resume point: the first visible required question with no stored value.
func (n *Navigator) FirstUnansweredQuestion(answers models.Answers) *VisibleQuestion {
	visible := n.AllVisibleQuestions(answers)
	for i, vq := range visible {
		if vq.Question.Required && !answers[vq.Question.ID].IsPresent() {
			return &visible[i]
		}
	}
	return nil
}

func (n *Navigator) HasNext(currentID string, answers models.Answers) bool {
	return n.NextQuestion(currentID, answers) != nil
}

func (n *Navigator) HasPrevious(currentID string, answers models.Answers) bool {
	return n.PreviousQuestion(currentID, answers) != nil
}

// IsVisible reports whether both the question and its section currently show.
func (n *Navigator) IsVisible(q models.Question, answers models.Answers) bool {
	s, ok := n.catalog.SectionByID(q.SectionID)
	if !ok {
		return false
	}
	return ShouldShow(s, answers) && ShouldShow(q, answers)
}

// CanProceed is false for unknown questions, true for hidden ones, and otherwise defers to validation.
func (n *Navigator) CanProceed(questionID string, answers models.Answers) bool {
	q, ok := n.catalog.QuestionByID(questionID)
	if !ok {
		return false
	}
	if !n.IsVisible(q, answers) {
		return true
	}
	return ValidateAnswer(q, answers[questionID]).Valid
}

// Progress counts visible questions with any stored value, valid or not.
func (n *Navigator) Progress(answers models.Answers, currentID string) Progress {
	visible := n.AllVisibleQuestions(answers)
	sections := n.VisibleSections(answers)

	p := Progress{
		TotalQuestions: len(visible),
		TotalSections:  len(sections),
	}
	for _, vq := range visible {
		if answers[vq.Question.ID].IsPresent() {
			p.AnsweredQuestions++
		}
	}
	if p.TotalQuestions > 0 {
		p.Percentage = int(math.Floor(float64(p.AnsweredQuestions)*100/float64(p.TotalQuestions) + 0.5))
	}

	if currentID == "" {
		return p
	}
	if i := indexOf(visible, currentID); i != -1 {
		section := visible[i].Section
		p.CurrentSection = &section
		for si, s := range sections {
			if s.ID == section.ID {
				p.CurrentSectionIndex = si
				break
			}
		}
	}
	return p
}

// IsComplete is true when every currently visible required question validates.
func (n *Navigator) IsComplete(answers models.Answers) bool {
	return len(n.UnansweredRequired(answers)) == 0
}

// UnansweredRequired lists the visible required questions that fail validation.
func (n *Navigator) UnansweredRequired(answers models.Answers) []models.Question {
	var out []models.Question
	for _, vq := range n.AllVisibleQuestions(answers) {
		if !vq.Question.Required {
			continue
		}
		if !ValidateAnswer(vq.Question, answers[vq.Question.ID]).Valid {
			out = append(out, vq.Question)
		}
	}
	return out
}

// QuestionIndex is the position in the visible traversal order, or -1.
func (n *Navigator) QuestionIndex(questionID string, answers models.Answers) int {
	return indexOf(n.AllVisibleQuestions(answers), questionID)
}

// IsLast reports whether questionID is the final visible question.
func (n *Navigator) IsLast(questionID string, answers models.Answers) bool {
	visible := n.AllVisibleQuestions(answers)
	i := indexOf(visible, questionID)
	return i != -1 && i == len(visible)-1
}

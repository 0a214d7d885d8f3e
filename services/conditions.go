package services

import (
	"github.com/aliirsyaadn/mindful-death/models"
)

// EvaluateCondition tests one branch condition against the current answers.
// It never fails: comparisons against a value of the wrong kind are simply false.
func EvaluateCondition(cond models.BranchCondition, answers models.Answers) bool {
	answer := answers[cond.QuestionID]

	switch cond.Operator {
	case models.OpEquals:
		return answer.Equal(cond.Value)
	case models.OpNotEquals:
		return !answer.Equal(cond.Value)
	case models.OpGreaterThan:
		n, isNum := answer.AsNumber()
		bound, boundNum := cond.Value.AsNumber()
		return isNum && boundNum && n > bound
	case models.OpLessThan:
		n, isNum := answer.AsNumber()
		bound, boundNum := cond.Value.AsNumber()
		return isNum && boundNum && n < bound
	case models.OpIncludes:
		if answer.Kind() != models.AnswerList {
			return false
		}
		s, _ := cond.Value.AsString()
		return answer.Contains(s)
	case models.OpNotIncludes:
		if answer.Kind() != models.AnswerList {
			return true
		}
		s, _ := cond.Value.AsString()
		return !answer.Contains(s)
	case models.OpExists:
		return answerExists(answer)
	case models.OpNotExists:
		return !answerExists(answer)
	default:
		return false
	}
}

// answerExists is true for any stored value other than the empty string. An empty list exists.
func answerExists(v models.AnswerValue) bool {
	if !v.IsPresent() {
		return false
	}
	s, isStr := v.AsString()
	return !isStr || s != ""
}

// ShouldShow decides visibility: every AND condition must hold, and at least one OR condition
// must hold when any are configured. An item without conditions is always visible.
func ShouldShow(item models.Conditional, answers models.Answers) bool {
	for _, cond := range item.AllConditions() {
		if !EvaluateCondition(cond, answers) {
			return false
		}
	}
	anyConds := item.AnyConditions()
	if len(anyConds) == 0 {
		return true
	}
	for _, cond := range anyConds {
		if EvaluateCondition(cond, answers) {
			return true
		}
	}
	return false
}

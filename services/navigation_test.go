package services

import (
	"testing"

	"github.com/aliirsyaadn/mindful-death/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visibleIDs(visible []VisibleQuestion) []string {
	ids := make([]string, 0, len(visible))
	for _, vq := range visible {
		ids = append(ids, vq.Question.ID)
	}
	return ids
}

func TestNavigator_AllVisibleQuestions(t *testing.T) {
	nav := NewNavigator(navigationCatalog())

	t.Run("Sorted by section order then question order, hidden items skipped", func(t *testing.T) {
		visible := nav.AllVisibleQuestions(models.Answers{})
		assert.Equal(t, []string{"name", "smoking", "reason", "conditions"}, visibleIDs(visible))
		assert.Equal(t, "basic", visible[0].Section.ID)
		assert.Equal(t, "extra", visible[2].Section.ID)
	})

	t.Run("Section revealed by an any-condition", func(t *testing.T) {
		visible := nav.AllVisibleQuestions(models.Answers{"smoking": models.StringAnswer("heavy")})
		assert.Equal(t, []string{"name", "smoking", "years", "reason", "conditions"}, visibleIDs(visible))
	})

	t.Run("Question revealed by includes", func(t *testing.T) {
		answers := models.Answers{"conditions": models.ListAnswer("diabetes")}
		assert.Contains(t, visibleIDs(nav.AllVisibleQuestions(answers)), "checkups")
	})

	t.Run("Pure function of its inputs", func(t *testing.T) {
		answers := models.Answers{"smoking": models.StringAnswer("light"), "name": models.StringAnswer("Ani")}
		assert.Equal(t, nav.AllVisibleQuestions(answers), nav.AllVisibleQuestions(answers))
	})
}

func TestNavigator_SectionVisibility(t *testing.T) {
	nav := NewNavigator(navigationCatalog())

	sectionIDs := func(sections []models.Section) []string {
		ids := make([]string, 0, len(sections))
		for _, s := range sections {
			ids = append(ids, s.ID)
		}
		return ids
	}

	assert.Equal(t, []string{"basic", "extra"}, sectionIDs(nav.VisibleSections(models.Answers{})))
	assert.Equal(t, []string{"basic", "history", "extra"},
		sectionIDs(nav.VisibleSections(models.Answers{"smoking": models.StringAnswer("light")})))

	questions := nav.VisibleQuestionsForSection("history", models.Answers{})
	require.Len(t, questions, 1, "a hidden section still lists its own visible questions")
	assert.Equal(t, "years", questions[0].ID)

	questions = nav.VisibleQuestionsForSection("extra", models.Answers{"name": models.StringAnswer("Ani")})
	require.Len(t, questions, 1)
	assert.Equal(t, "conditions", questions[0].ID)
}

func TestNavigator_Traversal(t *testing.T) {
	nav := NewNavigator(navigationCatalog())
	none := models.Answers{}
	heavy := models.Answers{"smoking": models.StringAnswer("heavy")}

	first := nav.FirstQuestion(none)
	require.NotNil(t, first)
	assert.Equal(t, "name", first.Question.ID)

	next := nav.NextQuestion("smoking", none)
	require.NotNil(t, next)
	assert.Equal(t, "reason", next.Question.ID)

	next = nav.NextQuestion("smoking", heavy)
	require.NotNil(t, next)
	assert.Equal(t, "years", next.Question.ID)

	prev := nav.PreviousQuestion("reason", heavy)
	require.NotNil(t, prev)
	assert.Equal(t, "years", prev.Question.ID)

	assert.Nil(t, nav.PreviousQuestion("name", none))
	assert.Nil(t, nav.NextQuestion("conditions", none))
	assert.Nil(t, nav.NextQuestion("unknown", none))
	assert.Nil(t, nav.PreviousQuestion("years", none), "hidden question has no neighbours")

	assert.True(t, nav.HasNext("name", none))
	assert.False(t, nav.HasPrevious("name", none))
	assert.True(t, nav.IsLast("conditions", none))
	assert.False(t, nav.IsLast("reason", none))
	assert.Equal(t, 2, nav.QuestionIndex("years", heavy))
	assert.Equal(t, -1, nav.QuestionIndex("years", none))

	t.Run("Nothing visible", func(t *testing.T) {
		empty := NewNavigator(NewCatalog(models.Flow{ID: "empty"}, models.FactorsConfig{}, models.InputTypesConfig{}))
		assert.Nil(t, empty.FirstQuestion(none))
		assert.Equal(t, 0, empty.Progress(none, "").Percentage)
		assert.True(t, empty.IsComplete(none))
	})
}

func TestNavigator_FirstUnansweredQuestion(t *testing.T) {
	nav := NewNavigator(navigationCatalog())

	resume := nav.FirstUnansweredQuestion(models.Answers{})
	require.NotNil(t, resume)
	assert.Equal(t, "smoking", resume.Question.ID, "optional questions are not resume points")

	resume = nav.FirstUnansweredQuestion(models.Answers{"smoking": models.StringAnswer("light")})
	require.NotNil(t, resume)
	assert.Equal(t, "years", resume.Question.ID)

	assert.Nil(t, nav.FirstUnansweredQuestion(models.Answers{
		"smoking": models.StringAnswer("never"),
		"reason":  models.StringAnswer("curious"),
	}))
}

func TestNavigator_IsComplete(t *testing.T) {
	nav := NewNavigator(navigationCatalog())

	t.Run("Required question hidden by not_exists is not required", func(t *testing.T) {
		answers := models.Answers{
			"name":    models.StringAnswer("Budi"),
			"smoking": models.StringAnswer("never"),
		}
		assert.True(t, nav.IsComplete(answers))
		assert.Empty(t, nav.UnansweredRequired(answers))
	})

	t.Run("The same question is required while visible", func(t *testing.T) {
		answers := models.Answers{"smoking": models.StringAnswer("never")}
		assert.False(t, nav.IsComplete(answers))
		missing := nav.UnansweredRequired(answers)
		require.Len(t, missing, 1)
		assert.Equal(t, "reason", missing[0].ID)
	})

	t.Run("Revealed section adds its required questions", func(t *testing.T) {
		answers := models.Answers{"smoking": models.StringAnswer("heavy"), "reason": models.StringAnswer("worried")}
		assert.False(t, nav.IsComplete(answers))

		answers["years"] = models.NumberAnswer(80)
		assert.False(t, nav.IsComplete(answers), "out of range answer does not complete")

		answers["years"] = models.NumberAnswer(15)
		assert.True(t, nav.IsComplete(answers))
	})
}

func TestNavigator_Progress(t *testing.T) {
	nav := NewNavigator(navigationCatalog())

	t.Run("Counts answered visible questions", func(t *testing.T) {
		p := nav.Progress(models.Answers{"smoking": models.StringAnswer("heavy")}, "years")
		assert.Equal(t, 5, p.TotalQuestions)
		assert.Equal(t, 1, p.AnsweredQuestions)
		assert.Equal(t, 20, p.Percentage)
		assert.Equal(t, 3, p.TotalSections)
		assert.Equal(t, 1, p.CurrentSectionIndex)
		require.NotNil(t, p.CurrentSection)
		assert.Equal(t, "history", p.CurrentSection.ID)
	})

	t.Run("Answers to hidden questions are not counted", func(t *testing.T) {
		p := nav.Progress(models.Answers{"years": models.NumberAnswer(3), "name": models.StringAnswer("A")}, "")
		// name answered hides reason: name, smoking, conditions
		assert.Equal(t, 3, p.TotalQuestions)
		assert.Equal(t, 1, p.AnsweredQuestions)
		assert.Equal(t, 33, p.Percentage)
		assert.Nil(t, p.CurrentSection)
	})

	t.Run("Percentage rounds half up", func(t *testing.T) {
		p := nav.Progress(models.Answers{"name": models.StringAnswer("A"), "smoking": models.StringAnswer("never")}, "")
		assert.Equal(t, 67, p.Percentage)
	})

	t.Run("Answering one more question never lowers the percentage", func(t *testing.T) {
		answers := models.Answers{"smoking": models.StringAnswer("heavy")}
		before := nav.Progress(answers, "").Percentage
		answers["reason"] = models.StringAnswer("curious")
		after := nav.Progress(answers, "").Percentage
		assert.GreaterOrEqual(t, after, before)
	})
}

func TestNavigator_CanProceed(t *testing.T) {
	nav := NewNavigator(navigationCatalog())

	assert.False(t, nav.CanProceed("unknown", models.Answers{}))
	assert.True(t, nav.CanProceed("years", models.Answers{}), "hidden questions never block")
	assert.False(t, nav.CanProceed("smoking", models.Answers{}))
	assert.True(t, nav.CanProceed("smoking", models.Answers{"smoking": models.StringAnswer("never")}))
	assert.True(t, nav.CanProceed("name", models.Answers{}), "optional question may be skipped")
	assert.False(t, nav.CanProceed("years", models.Answers{
		"smoking": models.StringAnswer("light"),
		"years":   models.NumberAnswer(71),
	}))
}

func TestValidateAnswer(t *testing.T) {
	catalog := navigationCatalog()
	question := func(id string) models.Question {
		q, ok := catalog.QuestionByID(id)
		require.True(t, ok)
		return q
	}

	tests := []struct {
		name     string
		question string
		answer   models.AnswerValue
		want     ValidationResult
	}{
		{"required missing", "smoking", models.AnswerValue{}, invalid(ValidationRequired)},
		{"required empty string", "smoking", models.StringAnswer(""), invalid(ValidationRequired)},
		{"required present", "smoking", models.StringAnswer("never"), validResult},
		{"optional missing", "name", models.AnswerValue{}, validResult},
		{"below min", "years", models.NumberAnswer(-1), invalid(ValidationMinValue)},
		{"above max", "years", models.NumberAnswer(70.5), invalid(ValidationMaxValue)},
		{"at max", "years", models.NumberAnswer(70), validResult},
		{"number above max", "checkups", models.NumberAnswer(13), invalid(ValidationMaxValue)},
		{"optional multi-select may be emptied", "conditions", models.ListAnswer(), validResult},
		{"too many selections", "conditions", models.ListAnswer("diabetes", "asthma", "none"), invalid(ValidationMaxSelections)},
		{"selections within bounds", "conditions", models.ListAnswer("asthma"), validResult},
		{"text within length counts runes", "name", models.StringAnswer("éééééééééé"), validResult},
		{"text too long", "name", models.StringAnswer("ééééééééééé"), invalid(ValidationMaxLength)},
		{"wrong kind skips bounds", "years", models.StringAnswer("many"), validResult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateAnswer(question(tt.question), tt.answer))
		})
	}

	t.Run("own min_selections still applies", func(t *testing.T) {
		q := models.Question{ID: "pick_two", InputType: models.InputMultiSelect,
			Config: models.QuestionConfig{MinSelections: intPtr(2)}}
		assert.Equal(t, invalid(ValidationMinSelections), ValidateAnswer(q, models.ListAnswer("asthma")))
		assert.Equal(t, validResult, ValidateAnswer(q, models.ListAnswer("asthma", "diabetes")))
	})
}

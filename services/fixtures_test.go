package services

import (
	"time"

	"github.com/aliirsyaadn/mindful-death/models"
)

func floatPtr(f float64) *float64 { return &f }

func option(v string) models.QuestionOption {
	return models.QuestionOption{ID: v, LabelKey: "opt." + v, Value: models.StringAnswer(v)}
}

// navigationCatalog is a small flow exercising every visibility rule:
//
//	basic:   name (text, optional), smoking (required)
//	history: years (slider, required), shown for light or heavy smokers
//	extra:   reason (required, only while name is unanswered),
//	         conditions (multi-select, optional), checkups (number, only with diabetes)
func navigationCatalog() *Catalog {
	flow := models.Flow{
		ID:      "test-flow",
		Version: "1.0.0",
		Sections: []models.Section{
			{ID: "extra", TitleKey: "extra", Order: 3},
			{ID: "basic", TitleKey: "basic", Order: 1},
			{ID: "history", TitleKey: "history", Order: 2, ShowIfAny: []models.BranchCondition{
				cond("smoking", models.OpEquals, models.StringAnswer("light")),
				cond("smoking", models.OpEquals, models.StringAnswer("heavy")),
			}},
		},
		Questions: []models.Question{
			{ID: "checkups", SectionID: "extra", InputType: models.InputNumber, Order: 3,
				Config: models.QuestionConfig{Min: floatPtr(0), Max: floatPtr(12)},
				ShowIf: []models.BranchCondition{cond("conditions", models.OpIncludes, models.StringAnswer("diabetes"))}},
			{ID: "smoking", SectionID: "basic", InputType: models.InputSingleSelect, Required: true, Order: 2,
				Config: models.QuestionConfig{Options: []models.QuestionOption{option("never"), option("light"), option("heavy")}}},
			{ID: "name", SectionID: "basic", InputType: models.InputText, Order: 1,
				Config: models.QuestionConfig{MaxLength: intPtr(10)}},
			{ID: "years", SectionID: "history", InputType: models.InputSlider, Required: true, Order: 1,
				Config: models.QuestionConfig{Min: floatPtr(0), Max: floatPtr(70)}},
			{ID: "reason", SectionID: "extra", InputType: models.InputSingleSelect, Required: true, Order: 1,
				Config: models.QuestionConfig{Options: []models.QuestionOption{option("curious"), option("worried")}},
				ShowIf: []models.BranchCondition{cond("name", models.OpNotExists, models.AnswerValue{})}},
			{ID: "conditions", SectionID: "extra", InputType: models.InputMultiSelect, Order: 2,
				Config: models.QuestionConfig{MaxSelections: intPtr(2), Options: []models.QuestionOption{option("diabetes"), option("asthma"), option("none")}}},
		},
	}
	inputTypes := models.InputTypesConfig{InputTypes: []models.InputTypeDefinition{
		{Type: models.InputMultiSelect, Component: "MultiSelect", DefaultConfig: models.QuestionConfig{MinSelections: intPtr(1)}},
		{Type: models.InputText, Component: "TextInput", DefaultConfig: models.QuestionConfig{MaxLength: intPtr(1000)}},
		{Type: models.InputSlider, Component: "Slider", DefaultConfig: models.QuestionConfig{Min: floatPtr(0), Max: floatPtr(100), Step: floatPtr(1)}},
	}}
	return NewCatalog(flow, models.FactorsConfig{}, inputTypes)
}

// scoringCatalog carries two compounding factors and one age-modified factor:
//
//	habit_a=yes  -5, compounds with habit_b_yes at 1.5
//	habit_b=yes  -2
//	smoking=heavy -10, 0.6 from age 65
func scoringCatalog() *Catalog {
	flow := models.Flow{
		ID:      "scoring-flow",
		Version: "1.0.0",
		Sections: []models.Section{{ID: "basic", Order: 1}},
		Questions: []models.Question{
			{ID: QuestionBirthDate, SectionID: "basic", InputType: models.InputDate, Required: true, Order: 1},
			{ID: QuestionGender, SectionID: "basic", InputType: models.InputSingleSelect, Required: true, Order: 2,
				Config: models.QuestionConfig{Options: []models.QuestionOption{option("male"), option("female")}}},
			{ID: QuestionProvince, SectionID: "basic", InputType: models.InputSingleSelect, Order: 3},
			{ID: "habit_a", SectionID: "basic", InputType: models.InputSingleSelect, Order: 4, LabelKey: "q.habit_a",
				Config: models.QuestionConfig{Options: []models.QuestionOption{option("yes"), option("no")}}},
			{ID: "habit_b", SectionID: "basic", InputType: models.InputSingleSelect, Order: 5},
			{ID: "smoking", SectionID: "basic", InputType: models.InputSingleSelect, Order: 6},
			{ID: "exercise", SectionID: "basic", InputType: models.InputSingleSelect, Order: 7},
		},
	}
	factors := models.FactorsConfig{
		Factors: []models.AdjustmentFactor{
			{ID: "habit_a_yes", QuestionID: "habit_a", AnswerValue: models.StringAnswer("yes"), Adjustment: -5,
				CitationIDs:  []string{"c2", "c1"},
				CompoundWith: []models.CompoundEffect{{FactorID: "habit_b_yes", Multiplier: 1.5}}},
			{ID: "habit_b_yes", QuestionID: "habit_b", AnswerValue: models.StringAnswer("yes"), Adjustment: -2},
			{ID: "smoking_heavy", QuestionID: "smoking", AnswerValue: models.StringAnswer("heavy"), Adjustment: -10,
				AgeModifiers: []models.AgeModifier{{MinAge: 65, MaxAge: 120, Multiplier: 0.6}}},
			{ID: "exercise_active", QuestionID: "exercise", AnswerValue: models.StringAnswer("active"), Adjustment: 2},
			{ID: "exercise_moderate", QuestionID: "exercise", AnswerValue: models.StringAnswer("moderate"), Adjustment: 0},
		},
		Citations: []models.Citation{
			{ID: "c1", Title: "First", Journal: "J1", Year: 2019},
			{ID: "c2", Title: "Second", Journal: "J2", Year: 2020},
		},
	}
	return NewCatalog(flow, factors, models.InputTypesConfig{})
}

// clock returns a fixed now function.
func clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

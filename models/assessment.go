package models

// InputType is the closed set of question input kinds.
type InputType string

const (
	InputSingleSelect InputType = "single-select"
	InputMultiSelect  InputType = "multi-select"
	InputSlider       InputType = "slider"
	InputNumber       InputType = "number"
	InputDate         InputType = "date"
	InputBoolean      InputType = "boolean"
	InputText         InputType = "text"
)

// Valid reports whether t is one of the known input kinds.
func (t InputType) Valid() bool {
	switch t {
	case InputSingleSelect, InputMultiSelect, InputSlider, InputNumber, InputDate, InputBoolean, InputText:
		return true
	}
	return false
}

// ConditionOperator is the comparison used by a BranchCondition.
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpGreaterThan ConditionOperator = "greater_than"
	OpLessThan    ConditionOperator = "less_than"
	OpIncludes    ConditionOperator = "includes"
	OpNotIncludes ConditionOperator = "not_includes"
	OpExists      ConditionOperator = "exists"
	OpNotExists   ConditionOperator = "not_exists"
)

// BranchCondition tests the current answer of one question.
type BranchCondition struct {
	QuestionID string            `json:"question_id" yaml:"question_id"`
	Operator   ConditionOperator `json:"operator" yaml:"operator"`
	Value      AnswerValue       `json:"value" yaml:"value"`
}

// Conditional is implemented by anything whose visibility depends on answers.
type Conditional interface {
	AllConditions() []BranchCondition
	AnyConditions() []BranchCondition
}

// QuestionOption is one selectable choice of a select question.
type QuestionOption struct {
	ID             string      `json:"id" yaml:"id"`
	LabelKey       string      `json:"label_key" yaml:"label_key"`
	Value          AnswerValue `json:"value" yaml:"value"`
	Icon           string      `json:"icon,omitempty" yaml:"icon,omitempty"`
	DescriptionKey string      `json:"description_key,omitempty" yaml:"description_key,omitempty"`
}

// QuestionConfig carries per-kind settings. Pointer fields distinguish "not configured" from zero.
type QuestionConfig struct {
	Options []QuestionOption `json:"options,omitempty" yaml:"options,omitempty"`
	Layout  string           `json:"layout,omitempty" yaml:"layout,omitempty"`

	Min  *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max  *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Step *float64 `json:"step,omitempty" yaml:"step,omitempty"`
	Unit string   `json:"unit,omitempty" yaml:"unit,omitempty"`

	MinYear *int   `json:"min_year,omitempty" yaml:"min_year,omitempty"`
	MaxYear *int   `json:"max_year,omitempty" yaml:"max_year,omitempty"`
	Format  string `json:"format,omitempty" yaml:"format,omitempty"`
	ShowAge *bool  `json:"show_age,omitempty" yaml:"show_age,omitempty"`

	TrueLabel  string `json:"true_label,omitempty" yaml:"true_label,omitempty"`
	FalseLabel string `json:"false_label,omitempty" yaml:"false_label,omitempty"`
	Style      string `json:"style,omitempty" yaml:"style,omitempty"`

	Multiline   *bool  `json:"multiline,omitempty" yaml:"multiline,omitempty"`
	MaxLength   *int   `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`

	MinSelections *int `json:"min_selections,omitempty" yaml:"min_selections,omitempty"`
	MaxSelections *int `json:"max_selections,omitempty" yaml:"max_selections,omitempty"`

	ShowDescription *bool `json:"show_description,omitempty" yaml:"show_description,omitempty"`
	ShowValue       *bool `json:"show_value,omitempty" yaml:"show_value,omitempty"`
	ShowMinMax      *bool `json:"show_min_max,omitempty" yaml:"show_min_max,omitempty"`
	ShowUnit        *bool `json:"show_unit,omitempty" yaml:"show_unit,omitempty"`
}

// Question is one item of the flow, owned by exactly one section.
type Question struct {
	ID             string            `json:"id" yaml:"id"`
	SectionID      string            `json:"section_id" yaml:"section_id"`
	InputType      InputType         `json:"input_type" yaml:"input_type"`
	LabelKey       string            `json:"label_key" yaml:"label_key"`
	DescriptionKey string            `json:"description_key,omitempty" yaml:"description_key,omitempty"`
	Required       bool              `json:"required" yaml:"required"`
	Order          int               `json:"order" yaml:"order"`
	Config         QuestionConfig    `json:"config" yaml:"config"`
	ShowIf         []BranchCondition `json:"show_if,omitempty" yaml:"show_if,omitempty"`
	ShowIfAny      []BranchCondition `json:"show_if_any,omitempty" yaml:"show_if_any,omitempty"`
}

func (q Question) AllConditions() []BranchCondition { return q.ShowIf }
func (q Question) AnyConditions() []BranchCondition { return q.ShowIfAny }

// OptionFor returns the first option whose value matches answer, or, for list answers,
// the first option selected in it.
func (q Question) OptionFor(answer AnswerValue) (QuestionOption, bool) {
	for _, o := range q.Config.Options {
		if list, ok := answer.AsList(); ok {
			s, isStr := o.Value.AsString()
			if !isStr {
				continue
			}
			for _, item := range list {
				if item == s {
					return o, true
				}
			}
			continue
		}
		if o.Value.Equal(answer) {
			return o, true
		}
	}
	return QuestionOption{}, false
}

// Section groups questions and may itself be conditionally visible.
type Section struct {
	ID             string            `json:"id" yaml:"id"`
	TitleKey       string            `json:"title_key" yaml:"title_key"`
	DescriptionKey string            `json:"description_key,omitempty" yaml:"description_key,omitempty"`
	Icon           string            `json:"icon,omitempty" yaml:"icon,omitempty"`
	Order          int               `json:"order" yaml:"order"`
	ShowIf         []BranchCondition `json:"show_if,omitempty" yaml:"show_if,omitempty"`
	ShowIfAny      []BranchCondition `json:"show_if_any,omitempty" yaml:"show_if_any,omitempty"`
}

func (s Section) AllConditions() []BranchCondition { return s.ShowIf }
func (s Section) AnyConditions() []BranchCondition { return s.ShowIfAny }

// Flow is the complete questionnaire definition.
type Flow struct {
	ID        string     `json:"id" yaml:"id"`
	Version   string     `json:"version" yaml:"version"`
	Sections  []Section  `json:"sections" yaml:"sections"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// ValueType is the stored value shape an input kind produces.
type ValueType string

const (
	ValueString  ValueType = "string"
	ValueNumber  ValueType = "number"
	ValueBoolean ValueType = "boolean"
	ValueArray   ValueType = "array"
)

// InputTypeDefinition holds the defaults merged under every question of a kind.
type InputTypeDefinition struct {
	Type          InputType      `json:"type" yaml:"type"`
	Component     string         `json:"component" yaml:"component"`
	DefaultConfig QuestionConfig `json:"default_config" yaml:"default_config"`
	Validation    struct {
		ValueType ValueType `json:"value_type" yaml:"value_type"`
	} `json:"validation" yaml:"validation"`
}

type InputTypesConfig struct {
	InputTypes []InputTypeDefinition `json:"input_types" yaml:"input_types"`
}

// Citation is a static bibliographic reference backing a factor.
type Citation struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Journal string `json:"journal" yaml:"journal"`
	Year    int    `json:"year" yaml:"year"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	DOI     string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// CompoundEffect scales a factor when another factor is matched too.
type CompoundEffect struct {
	FactorID   string  `json:"factor_id" yaml:"factor_id"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// AgeModifier scales a factor for subjects whose age falls in [MinAge, MaxAge].
type AgeModifier struct {
	MinAge     int     `json:"min_age" yaml:"min_age"`
	MaxAge     int     `json:"max_age" yaml:"max_age"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// Contains reports whether age lies within the inclusive range.
func (m AgeModifier) Contains(age int) bool {
	return age >= m.MinAge && age <= m.MaxAge
}

// AdjustmentFactor maps one (question, answer) pair to a life-year adjustment.
type AdjustmentFactor struct {
	ID           string           `json:"id" yaml:"id"`
	QuestionID   string           `json:"question_id" yaml:"question_id"`
	AnswerValue  AnswerValue      `json:"answer_value" yaml:"answer_value"`
	Adjustment   float64          `json:"adjustment" yaml:"adjustment"`
	CitationIDs  []string         `json:"citation_ids" yaml:"citation_ids"`
	CompoundWith []CompoundEffect `json:"compound_with,omitempty" yaml:"compound_with,omitempty"`
	AgeModifiers []AgeModifier    `json:"age_modifiers,omitempty" yaml:"age_modifiers,omitempty"`
}

// Matches reports whether answer selects this factor: an equal value, or a list holding it.
func (f AdjustmentFactor) Matches(answer AnswerValue) bool {
	if !answer.IsPresent() {
		return false
	}
	if answer.Equal(f.AnswerValue) {
		return true
	}
	if s, ok := f.AnswerValue.AsString(); ok && answer.Kind() == AnswerList {
		return answer.Contains(s)
	}
	return false
}

type FactorsConfig struct {
	Factors   []AdjustmentFactor `json:"factors" yaml:"factors"`
	Citations []Citation         `json:"citations" yaml:"citations"`
}

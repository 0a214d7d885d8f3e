package services

import (
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/aliirsyaadn/mindful-death/data"
	"github.com/aliirsyaadn/mindful-death/models"

	"gopkg.in/yaml.v3"
)

// unknownSectionOrder sorts questions of an unknown section after every known one.
const unknownSectionOrder = 999

// CatalogPaths points at definition files on disk. An empty path selects the embedded default.
type CatalogPaths struct {
	Flow       string
	Factors    string
	InputTypes string
}

// Catalog is the load-once, read-only store of flow, factor, citation and input-type definitions.
// Questions keep their own config; MergedConfig overlays the input-type defaults for rendering.
type Catalog struct {
	flow       models.Flow
	factors    models.FactorsConfig
	inputTypes []models.InputTypeDefinition

	sections           []models.Section
	questions          []models.Question
	sectionIndex       map[string]int
	questionIndex      map[string]int
	questionsBySection map[string][]models.Question
	factorIndex        map[string]int
	factorsByQuestion  map[string][]models.AdjustmentFactor
	citationIndex      map[string]int
	inputTypeIndex     map[models.InputType]int
}

// NewCatalog indexes already-decoded definitions.
func NewCatalog(flow models.Flow, factors models.FactorsConfig, inputTypes models.InputTypesConfig) *Catalog {
	c := &Catalog{
		flow:               flow,
		factors:            factors,
		inputTypes:         inputTypes.InputTypes,
		sectionIndex:       make(map[string]int),
		questionIndex:      make(map[string]int),
		questionsBySection: make(map[string][]models.Question),
		factorIndex:        make(map[string]int),
		factorsByQuestion:  make(map[string][]models.AdjustmentFactor),
		citationIndex:      make(map[string]int),
		inputTypeIndex:     make(map[models.InputType]int),
	}

	for i, def := range c.inputTypes {
		if _, dup := c.inputTypeIndex[def.Type]; !dup {
			c.inputTypeIndex[def.Type] = i
		}
	}

	c.sections = make([]models.Section, len(flow.Sections))
	copy(c.sections, flow.Sections)
	sort.SliceStable(c.sections, func(i, j int) bool {
		return c.sections[i].Order < c.sections[j].Order
	})
	sectionOrder := make(map[string]int, len(c.sections))
	for i, s := range c.sections {
		if _, dup := c.sectionIndex[s.ID]; !dup {
			c.sectionIndex[s.ID] = i
			sectionOrder[s.ID] = s.Order
		}
	}

	c.questions = make([]models.Question, 0, len(flow.Questions))
	c.questions = append(c.questions, flow.Questions...)
	orderOf := func(sectionID string) int {
		if o, ok := sectionOrder[sectionID]; ok {
			return o
		}
		return unknownSectionOrder
	}
	sort.SliceStable(c.questions, func(i, j int) bool {
		oi, oj := orderOf(c.questions[i].SectionID), orderOf(c.questions[j].SectionID)
		if oi != oj {
			return oi < oj
		}
		return c.questions[i].Order < c.questions[j].Order
	})
	for i, q := range c.questions {
		if _, dup := c.questionIndex[q.ID]; !dup {
			c.questionIndex[q.ID] = i
		}
		c.questionsBySection[q.SectionID] = append(c.questionsBySection[q.SectionID], q)
	}

	for i, f := range factors.Factors {
		if _, dup := c.factorIndex[f.ID]; !dup {
			c.factorIndex[f.ID] = i
		}
		c.factorsByQuestion[f.QuestionID] = append(c.factorsByQuestion[f.QuestionID], f)
	}
	for i, cit := range factors.Citations {
		if _, dup := c.citationIndex[cit.ID]; !dup {
			c.citationIndex[cit.ID] = i
		}
	}
	return c
}

// ParseCatalog decodes the three YAML (or JSON) documents into a Catalog.
func ParseCatalog(flowDoc, factorsDoc, inputTypesDoc []byte) (*Catalog, error) {
	var flow models.Flow
	if err := yaml.Unmarshal(flowDoc, &flow); err != nil {
		return nil, fmt.Errorf("failed to parse assessment flow: %w", err)
	}
	var factors models.FactorsConfig
	if err := yaml.Unmarshal(factorsDoc, &factors); err != nil {
		return nil, fmt.Errorf("failed to parse assessment factors: %w", err)
	}
	var inputTypes models.InputTypesConfig
	if err := yaml.Unmarshal(inputTypesDoc, &inputTypes); err != nil {
		return nil, fmt.Errorf("failed to parse input types: %w", err)
	}
	return NewCatalog(flow, factors, inputTypes), nil
}

// LoadCatalog reads definitions from the given paths, falling back to the embedded files per empty path.
func LoadCatalog(paths CatalogPaths) (*Catalog, error) {
	flowDoc, err := readDefinition(paths.Flow, data.FlowFile)
	if err != nil {
		return nil, err
	}
	factorsDoc, err := readDefinition(paths.Factors, data.FactorsFile)
	if err != nil {
		return nil, err
	}
	inputTypesDoc, err := readDefinition(paths.InputTypes, data.InputTypesFile)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(flowDoc, factorsDoc, inputTypesDoc)
}

// DefaultCatalog loads the embedded definitions.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(CatalogPaths{})
}

func readDefinition(path, embedded string) ([]byte, error) {
	if path == "" {
		b, err := fs.ReadFile(data.Assessment, embedded)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded definition %s: %w", embedded, err)
		}
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file %s: %w", path, err)
	}
	return b, nil
}

func (c *Catalog) FlowID() string      { return c.flow.ID }
func (c *Catalog) FlowVersion() string { return c.flow.Version }

// Sections returns all sections sorted by order.
func (c *Catalog) Sections() []models.Section { return c.sections }

func (c *Catalog) SectionByID(id string) (models.Section, bool) {
	i, ok := c.sectionIndex[id]
	if !ok {
		return models.Section{}, false
	}
	return c.sections[i], true
}

// Questions returns all questions sorted by section order, then question order.
func (c *Catalog) Questions() []models.Question { return c.questions }

func (c *Catalog) QuestionByID(id string) (models.Question, bool) {
	i, ok := c.questionIndex[id]
	if !ok {
		return models.Question{}, false
	}
	return c.questions[i], true
}

// QuestionsBySection returns a section's questions sorted by order.
func (c *Catalog) QuestionsBySection(sectionID string) []models.Question {
	return c.questionsBySection[sectionID]
}

func (c *Catalog) Factors() []models.AdjustmentFactor { return c.factors.Factors }

func (c *Catalog) FactorByID(id string) (models.AdjustmentFactor, bool) {
	i, ok := c.factorIndex[id]
	if !ok {
		return models.AdjustmentFactor{}, false
	}
	return c.factors.Factors[i], true
}

func (c *Catalog) FactorsByQuestion(questionID string) []models.AdjustmentFactor {
	return c.factorsByQuestion[questionID]
}

// FactorQuestionIDs returns the distinct question ids any factor is keyed on.
func (c *Catalog) FactorQuestionIDs() []string {
	ids := make([]string, 0, len(c.factorsByQuestion))
	seen := make(map[string]bool, len(c.factorsByQuestion))
	for _, f := range c.factors.Factors {
		if !seen[f.QuestionID] {
			seen[f.QuestionID] = true
			ids = append(ids, f.QuestionID)
		}
	}
	return ids
}

func (c *Catalog) Citations() []models.Citation { return c.factors.Citations }

func (c *Catalog) CitationByID(id string) (models.Citation, bool) {
	i, ok := c.citationIndex[id]
	if !ok {
		return models.Citation{}, false
	}
	return c.factors.Citations[i], true
}

// CitationsByIDs returns the known citations among ids, in catalog order. Unknown ids are skipped.
func (c *Catalog) CitationsByIDs(ids []string) []models.Citation {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make([]models.Citation, 0, len(ids))
	for _, cit := range c.factors.Citations {
		if wanted[cit.ID] {
			out = append(out, cit)
		}
	}
	return out
}

func (c *Catalog) InputTypeDefinition(t models.InputType) (models.InputTypeDefinition, bool) {
	i, ok := c.inputTypeIndex[t]
	if !ok {
		return models.InputTypeDefinition{}, false
	}
	return c.inputTypes[i], true
}

// MergedConfig returns the question's config with its input type's defaults filled in.
// Answers are validated against the question's own config, not this one.
func (c *Catalog) MergedConfig(questionID string) (models.QuestionConfig, bool) {
	q, ok := c.QuestionByID(questionID)
	if !ok {
		return models.QuestionConfig{}, false
	}
	return c.mergeDefaults(q), true
}

func (c *Catalog) mergeDefaults(q models.Question) models.QuestionConfig {
	def, ok := c.InputTypeDefinition(q.InputType)
	if !ok {
		return q.Config
	}
	return mergeQuestionConfig(def.DefaultConfig, q.Config)
}

// mergeQuestionConfig overlays every field set in override on top of base.
func mergeQuestionConfig(base, override models.QuestionConfig) models.QuestionConfig {
	out := base
	if override.Options != nil {
		out.Options = override.Options
	}
	setString(&out.Layout, override.Layout)
	setString(&out.Unit, override.Unit)
	setString(&out.Format, override.Format)
	setString(&out.TrueLabel, override.TrueLabel)
	setString(&out.FalseLabel, override.FalseLabel)
	setString(&out.Style, override.Style)
	setString(&out.Placeholder, override.Placeholder)
	setPtr(&out.Min, override.Min)
	setPtr(&out.Max, override.Max)
	setPtr(&out.Step, override.Step)
	setPtr(&out.MinYear, override.MinYear)
	setPtr(&out.MaxYear, override.MaxYear)
	setPtr(&out.ShowAge, override.ShowAge)
	setPtr(&out.Multiline, override.Multiline)
	setPtr(&out.MaxLength, override.MaxLength)
	setPtr(&out.MinSelections, override.MinSelections)
	setPtr(&out.MaxSelections, override.MaxSelections)
	setPtr(&out.ShowDescription, override.ShowDescription)
	setPtr(&out.ShowValue, override.ShowValue)
	setPtr(&out.ShowMinMax, override.ShowMinMax)
	setPtr(&out.ShowUnit, override.ShowUnit)
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setPtr[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

// Validate checks cross references between definitions and returns one message per problem.
// It is meant for tests and the validate command, not the request path.
func (c *Catalog) Validate() []string {
	var problems []string

	seenSections := make(map[string]bool)
	for _, s := range c.flow.Sections {
		if seenSections[s.ID] {
			problems = append(problems, fmt.Sprintf("section %q is defined more than once", s.ID))
		}
		seenSections[s.ID] = true
	}

	seenQuestions := make(map[string]bool)
	for _, q := range c.flow.Questions {
		if seenQuestions[q.ID] {
			problems = append(problems, fmt.Sprintf("question %q is defined more than once", q.ID))
		}
		seenQuestions[q.ID] = true
		if !seenSections[q.SectionID] {
			problems = append(problems, fmt.Sprintf("question %q references non-existent section %q", q.ID, q.SectionID))
		}
		if !q.InputType.Valid() {
			problems = append(problems, fmt.Sprintf("question %q has unknown input type %q", q.ID, q.InputType))
		}
	}

	checkConditions := func(kind, id, list string, conds []models.BranchCondition) {
		for _, cond := range conds {
			if !seenQuestions[cond.QuestionID] {
				problems = append(problems, fmt.Sprintf("%s %q %s references non-existent question %q", kind, id, list, cond.QuestionID))
			}
			if !knownOperator(cond.Operator) {
				problems = append(problems, fmt.Sprintf("%s %q %s uses unknown operator %q", kind, id, list, cond.Operator))
			}
		}
	}
	for _, s := range c.flow.Sections {
		checkConditions("section", s.ID, "show_if", s.ShowIf)
		checkConditions("section", s.ID, "show_if_any", s.ShowIfAny)
	}
	for _, q := range c.flow.Questions {
		checkConditions("question", q.ID, "show_if", q.ShowIf)
		checkConditions("question", q.ID, "show_if_any", q.ShowIfAny)
	}

	seenFactors := make(map[string]bool)
	for _, f := range c.factors.Factors {
		if seenFactors[f.ID] {
			problems = append(problems, fmt.Sprintf("factor %q is defined more than once", f.ID))
		}
		seenFactors[f.ID] = true
	}
	for _, f := range c.factors.Factors {
		if !seenQuestions[f.QuestionID] {
			problems = append(problems, fmt.Sprintf("factor %q references non-existent question %q", f.ID, f.QuestionID))
		}
		for _, citationID := range f.CitationIDs {
			if _, ok := c.citationIndex[citationID]; !ok {
				problems = append(problems, fmt.Sprintf("factor %q references non-existent citation %q", f.ID, citationID))
			}
		}
		for _, ce := range f.CompoundWith {
			if !seenFactors[ce.FactorID] {
				problems = append(problems, fmt.Sprintf("factor %q compounds with non-existent factor %q", f.ID, ce.FactorID))
			}
		}
		for _, m := range f.AgeModifiers {
			if m.MinAge > m.MaxAge {
				problems = append(problems, fmt.Sprintf("factor %q has an empty age range %d-%d", f.ID, m.MinAge, m.MaxAge))
			}
		}
	}
	return problems
}

func knownOperator(op models.ConditionOperator) bool {
	switch op {
	case models.OpEquals, models.OpNotEquals, models.OpGreaterThan, models.OpLessThan,
		models.OpIncludes, models.OpNotIncludes, models.OpExists, models.OpNotExists:
		return true
	}
	return false
}

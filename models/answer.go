package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AnswerKind tags which variant an AnswerValue holds.
type AnswerKind int

const (
	AnswerNone AnswerKind = iota
	AnswerString
	AnswerNumber
	AnswerBool
	AnswerList
)

func (k AnswerKind) String() string {
	switch k {
	case AnswerString:
		return "string"
	case AnswerNumber:
		return "number"
	case AnswerBool:
		return "boolean"
	case AnswerList:
		return "list"
	default:
		return "none"
	}
}

// AnswerValue is a single stored answer: a string, a number, a boolean or a list of strings.
// The zero value is an absent answer.
type AnswerValue struct {
	kind AnswerKind
	str  string
	num  float64
	b    bool
	list []string
}

func StringAnswer(s string) AnswerValue { return AnswerValue{kind: AnswerString, str: s} }

func NumberAnswer(n float64) AnswerValue { return AnswerValue{kind: AnswerNumber, num: n} }

func BoolAnswer(b bool) AnswerValue { return AnswerValue{kind: AnswerBool, b: b} }

func ListAnswer(items ...string) AnswerValue {
	list := make([]string, len(items))
	copy(list, items)
	return AnswerValue{kind: AnswerList, list: list}
}

func (v AnswerValue) Kind() AnswerKind { return v.kind }

// IsPresent reports whether a value was stored at all.
func (v AnswerValue) IsPresent() bool { return v.kind != AnswerNone }

// IsBlank reports whether the value counts as unanswered: absent, empty string or empty list.
func (v AnswerValue) IsBlank() bool {
	switch v.kind {
	case AnswerNone:
		return true
	case AnswerString:
		return v.str == ""
	case AnswerList:
		return len(v.list) == 0
	}
	return false
}

func (v AnswerValue) AsString() (string, bool) { return v.str, v.kind == AnswerString }

func (v AnswerValue) AsNumber() (float64, bool) { return v.num, v.kind == AnswerNumber }

func (v AnswerValue) AsBool() (bool, bool) { return v.b, v.kind == AnswerBool }

func (v AnswerValue) AsList() ([]string, bool) {
	if v.kind != AnswerList {
		return nil, false
	}
	return v.list, true
}

// Equal compares kind and value strictly; a number never equals its string form.
func (v AnswerValue) Equal(o AnswerValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case AnswerString:
		return v.str == o.str
	case AnswerNumber:
		return v.num == o.num
	case AnswerBool:
		return v.b == o.b
	case AnswerList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
	}
	return true
}

// Contains reports whether a list answer holds item. Non-list answers contain nothing.
func (v AnswerValue) Contains(item string) bool {
	for _, s := range v.list {
		if s == item {
			return true
		}
	}
	return false
}

// Len is the number of selections of a list answer, 0 otherwise.
func (v AnswerValue) Len() int { return len(v.list) }

func (v AnswerValue) String() string {
	switch v.kind {
	case AnswerString:
		return v.str
	case AnswerNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case AnswerBool:
		return strconv.FormatBool(v.b)
	case AnswerList:
		return fmt.Sprint(v.list)
	}
	return ""
}

func (v AnswerValue) value() interface{} {
	switch v.kind {
	case AnswerString:
		return v.str
	case AnswerNumber:
		return v.num
	case AnswerBool:
		return v.b
	case AnswerList:
		return v.list
	}
	return nil
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.value())
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := answerFromRaw(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v AnswerValue) MarshalYAML() (interface{}, error) {
	return v.value(), nil
}

func (v *AnswerValue) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := answerFromRaw(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}

func answerFromRaw(raw interface{}) (AnswerValue, error) {
	switch t := raw.(type) {
	case nil:
		return AnswerValue{}, nil
	case string:
		return StringAnswer(t), nil
	case bool:
		return BoolAnswer(t), nil
	case float64:
		return NumberAnswer(t), nil
	case int:
		return NumberAnswer(float64(t)), nil
	case int64:
		return NumberAnswer(float64(t)), nil
	case []interface{}:
		items := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return AnswerValue{}, errors.New("list answers may only contain strings")
			}
			items = append(items, s)
		}
		return AnswerValue{kind: AnswerList, list: items}, nil
	}
	return AnswerValue{}, fmt.Errorf("unsupported answer value of type %T", raw)
}

// Answers maps question ids to their stored value. A missing key reads as an absent answer.
type Answers map[string]AnswerValue

// Clone returns a shallow copy safe to mutate without touching the original map.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

package model

import (
	"encoding/json"
	"strconv"
)

type ValueKind int

const (
	NullValue ValueKind = iota
	StringValue
	NumberValue
	ListValue
)

// AnswerValue holds one of: nothing, a string, a number or a list of strings.
// Answers arrive as loosely typed JSON and are narrowed here once.
type AnswerValue struct {
	kind ValueKind
	str  string
	num  float64
	list []string
}

func String(s string) AnswerValue { return AnswerValue{kind: StringValue, str: s} }
func Number(n float64) AnswerValue { return AnswerValue{kind: NumberValue, num: n} }
func List(items ...string) AnswerValue { return AnswerValue{kind: ListValue, list: items} }

func (v AnswerValue) Kind() ValueKind { return v.kind }
func (v AnswerValue) IsNull() bool { return v.kind == NullValue }

func (v AnswerValue) Str() string { return v.str }
func (v AnswerValue) Num() float64 { return v.num }
func (v AnswerValue) Items() []string { return v.list }

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case StringValue:
		return json.Marshal(v.str)
	case NumberValue:
		return json.Marshal(v.num)
	case ListValue:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON never fails on well-formed JSON: shapes that have no
// meaning as an answer (objects, nested lists) decode to a null value.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromJSON(raw)
	return nil
}

func fromJSON(raw any) AnswerValue {
	switch x := raw.(type) {
	case string:
		return String(x)
	case float64:
		return Number(x)
	case bool:
		return String(strconv.FormatBool(x))
	case []any:
		items := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := scalarString(item)
			if !ok {
				return AnswerValue{}
			}
			items = append(items, s)
		}
		return List(items...)
	default:
		return AnswerValue{}
	}
}

func scalarString(raw any) (string, bool) {
	switch x := raw.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

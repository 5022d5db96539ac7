package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mbolis/quick-forms/model"
)

// ValidateAnswers checks a submission against the form it targets. Keys of
// the returned errors are "answers.<fieldId>".
func ValidateAnswers(form model.Form, answers []model.Answer) FieldErrors {
	errs := FieldErrors{}

	fields := make(map[string]model.Field, len(form.Fields))
	for _, f := range form.Fields {
		if _, dup := fields[f.ID]; !dup {
			fields[f.ID] = f
		}
	}

	given := make(map[string]model.AnswerValue, len(answers))
	for _, a := range answers {
		key := "answers." + a.FieldID
		f, ok := fields[a.FieldID]
		if !ok {
			errs[key] = "unknown field"
			continue
		}
		if _, dup := given[a.FieldID]; dup {
			errs[key] = "answered more than once"
			continue
		}
		given[a.FieldID] = a.Value

		if isBlank(a.Value) {
			continue
		}
		if msg := checkValue(f, a.Value); msg != "" {
			errs[key] = msg
		}
	}

	for _, f := range form.Fields {
		if !f.Required() {
			continue
		}
		if v, ok := given[f.ID]; !ok || isBlank(v) {
			errs["answers."+f.ID] = "is required"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func isBlank(v model.AnswerValue) bool {
	switch v.Kind() {
	case model.NullValue:
		return true
	case model.StringValue:
		return strings.TrimSpace(v.Str()) == ""
	case model.ListValue:
		return len(v.Items()) == 0
	}
	return false
}

func checkValue(f model.Field, v model.AnswerValue) string {
	switch f.Type {
	case model.TypeRadioGroup, model.TypeSelect:
		if v.Kind() == model.ListValue {
			return "expects a single option"
		}
		return checkOptions(f, []string{scalar(v)})

	case model.TypeCheckbox:
		if v.Kind() == model.ListValue {
			return checkOptions(f, v.Items())
		}
		return checkOptions(f, []string{scalar(v)})

	case model.TypeNumberInput:
		return checkNumber(f, v)

	case model.TypeEmail:
		if v.Kind() != model.StringValue {
			return "must be a valid email address"
		}
		if err := GetValidator().Var(v.Str(), "email"); err != nil {
			return "must be a valid email address"
		}

	case model.TypeDatePicker, model.TypeFileUpload:
		if v.Kind() != model.StringValue {
			return "must be a string"
		}
	}
	return ""
}

func checkOptions(f model.Field, values []string) string {
	keys := make(map[string]bool, len(f.Options))
	for _, o := range f.Options {
		keys[o.Key()] = true
	}
	for _, val := range values {
		if !keys[val] {
			return fmt.Sprintf("%q is not an option", val)
		}
	}
	return ""
}

func checkNumber(f model.Field, v model.AnswerValue) string {
	var n float64
	switch v.Kind() {
	case model.NumberValue:
		n = v.Num()
	case model.StringValue:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return "must be a number"
		}
		n = parsed
	default:
		return "must be a number"
	}

	if f.Validation == nil {
		return ""
	}
	if lo := f.Validation.Min; lo != nil && n < *lo {
		return "must be at least " + strconv.FormatFloat(*lo, 'f', -1, 64)
	}
	if hi := f.Validation.Max; hi != nil && n > *hi {
		return "must be at most " + strconv.FormatFloat(*hi, 'f', -1, 64)
	}
	return ""
}

func scalar(v model.AnswerValue) string {
	if v.Kind() == model.NumberValue {
		return strconv.FormatFloat(v.Num(), 'f', -1, 64)
	}
	return v.Str()
}

// Package validation checks form definitions with go-playground/validator
// and incoming answers against the form they are submitted to.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/mbolis/quick-forms/model"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var fieldTypes = map[string]bool{
	model.TypeRadioGroup:  true,
	model.TypeSelect:      true,
	model.TypeCheckbox:    true,
	model.TypeInput:       true,
	model.TypeText:        true,
	model.TypeTextarea:    true,
	model.TypeEmail:       true,
	model.TypeNumberInput: true,
	model.TypeDatePicker:  true,
	model.TypeFileUpload:  true,
}

// FieldErrors maps a JSON path (e.g. "fields[0].type") to a message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = k + ": " + fe[k]
	}
	return strings.Join(msgs, "; ")
}

// GetValidator returns the shared validator, with JSON names in error paths
// and the "fieldtype" tag registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		validate.RegisterValidation("fieldtype", func(fl validator.FieldLevel) bool {
			return fieldTypes[fl.Field().String()]
		})
	})
	return validate
}

// ValidateStruct returns nil when s is valid.
func ValidateStruct(s any) FieldErrors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe)] = translate(fe)
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func translate(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "fieldtype":
		return fmt.Sprintf("unknown field type %q", fe.Value())
	case "unique":
		return fmt.Sprintf("%s must be unique", strings.ToLower(fe.Param()))
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

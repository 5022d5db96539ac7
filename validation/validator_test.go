package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-forms/model"
)

func ptr(f float64) *float64 { return &f }

func contactForm() model.Form {
	return model.Form{
		Title: "Contact",
		Fields: []model.Field{
			{ID: "name", Type: model.TypeInput, Label: "Name", Validation: &model.FieldValidation{Required: true}},
			{ID: "email", Type: model.TypeEmail, Label: "Email"},
			{ID: "age", Type: model.TypeNumberInput, Label: "Age", Validation: &model.FieldValidation{Min: ptr(18), Max: ptr(99)}},
			{ID: "plan", Type: model.TypeRadioGroup, Label: "Plan", Options: []model.FieldOption{{Label: "Free", Value: "free"}, {Label: "Pro", Value: "pro"}}},
			{ID: "topics", Type: model.TypeCheckbox, Label: "Topics", Options: []model.FieldOption{{Label: "go", Value: "go"}, {Label: "sql", Value: "sql"}}},
		},
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}

func TestValidateStruct(t *testing.T) {
	form := contactForm()
	assert.Nil(t, ValidateStruct(&form))

	t.Run("missing title", func(t *testing.T) {
		form := contactForm()
		form.Title = ""
		errs := ValidateStruct(&form)
		require.NotNil(t, errs)
		assert.Equal(t, "is required", errs["title"])
	})

	t.Run("unknown field type", func(t *testing.T) {
		form := contactForm()
		form.Fields[1].Type = "Slider"
		errs := ValidateStruct(&form)
		require.NotNil(t, errs)
		assert.Contains(t, errs["fields[1].type"], "Slider")
	})

	t.Run("duplicate field ids", func(t *testing.T) {
		form := contactForm()
		form.Fields[1].ID = "name"
		errs := ValidateStruct(&form)
		require.NotNil(t, errs)
		assert.Contains(t, errs, "fields")
	})

	t.Run("title too long", func(t *testing.T) {
		form := contactForm()
		form.Title = strings.Repeat("x", 201)
		errs := ValidateStruct(&form)
		require.NotNil(t, errs)
		assert.Equal(t, "must be at most 200 characters", errs["title"])
	})
}

func TestValidateAnswers(t *testing.T) {
	form := contactForm()

	tests := []struct {
		name    string
		answers []model.Answer
		errs    FieldErrors
	}{
		{
			name: "valid",
			answers: []model.Answer{
				{FieldID: "name", Value: model.String("Ada")},
				{FieldID: "email", Value: model.String("ada@example.com")},
				{FieldID: "age", Value: model.Number(36)},
				{FieldID: "plan", Value: model.String("pro")},
				{FieldID: "topics", Value: model.List("go", "sql")},
			},
		},
		{
			name:    "optional fields may be null",
			answers: []model.Answer{{FieldID: "name", Value: model.String("Ada")}, {FieldID: "age"}},
		},
		{
			name:    "numeric string accepted",
			answers: []model.Answer{{FieldID: "name", Value: model.String("Ada")}, {FieldID: "age", Value: model.String("42")}},
		},
		{
			name:    "required missing",
			answers: []model.Answer{{FieldID: "plan", Value: model.String("free")}},
			errs:    FieldErrors{"answers.name": "is required"},
		},
		{
			name:    "required blank",
			answers: []model.Answer{{FieldID: "name", Value: model.String("  ")}},
			errs:    FieldErrors{"answers.name": "is required"},
		},
		{
			name:    "unknown field",
			answers: []model.Answer{{FieldID: "name", Value: model.String("Ada")}, {FieldID: "ghost", Value: model.String("boo")}},
			errs:    FieldErrors{"answers.ghost": "unknown field"},
		},
		{
			name:    "below min",
			answers: []model.Answer{{FieldID: "name", Value: model.String("Ada")}, {FieldID: "age", Value: model.Number(17)}},
			errs:    FieldErrors{"answers.age": "must be at least 18"},
		},
		{
			name:    "above max",
			answers: []model.Answer{{FieldID: "name", Value: model.String("Ada")}, {FieldID: "age", Value: model.Number(100)}},
			errs:    FieldErrors{"answers.age": "must be at most 99"},
		},
		{
			name:    "not a number",
			answers: []model.Answer{{FieldID: "name", Value: model.String("Ada")}, {FieldID: "age", Value: model.String("old")}},
			errs:    FieldErrors{"answers.age": "must be a number"},
		},
		{
			name:    "not an option",
			answers: []model.Answer{{FieldID: "name", Value: model.String("Ada")}, {FieldID: "plan", Value: model.String("gold")}},
			errs:    FieldErrors{"answers.plan": `"gold" is not an option`},
		},
		{
			name:    "list on single choice",
			answers: []model.Answer{{FieldID: "name", Value: model.String("Ada")}, {FieldID: "plan", Value: model.List("free", "pro")}},
			errs:    FieldErrors{"answers.plan": "expects a single option"},
		},
		{
			name:    "checkbox item not an option",
			answers: []model.Answer{{FieldID: "name", Value: model.String("Ada")}, {FieldID: "topics", Value: model.List("go", "rust")}},
			errs:    FieldErrors{"answers.topics": `"rust" is not an option`},
		},
		{
			name:    "bad email",
			answers: []model.Answer{{FieldID: "name", Value: model.String("Ada")}, {FieldID: "email", Value: model.String("nope")}},
			errs:    FieldErrors{"answers.email": "must be a valid email address"},
		},
		{
			name: "answered twice",
			answers: []model.Answer{
				{FieldID: "name", Value: model.String("Ada")},
				{FieldID: "name", Value: model.String("Bob")},
			},
			errs: FieldErrors{"answers.name": "answered more than once"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errs, ValidateAnswers(form, tt.answers))
		})
	}
}

func TestFieldErrors_Error(t *testing.T) {
	errs := FieldErrors{"b": "second", "a": "first"}
	assert.Equal(t, "a: first; b: second", errs.Error())
}

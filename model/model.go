package model

import (
	"encoding/json"
	"time"
)

// Field types understood by the form designer.
const (
	TypeRadioGroup  = "RadioGroup"
	TypeSelect      = "Select"
	TypeCheckbox    = "Checkbox"
	TypeInput       = "Input"
	TypeText        = "Text"
	TypeTextarea    = "Textarea"
	TypeEmail       = "Email"
	TypeNumberInput = "NumberInput"
	TypeDatePicker  = "DatePicker"
	TypeFileUpload  = "FileUpload"
)

type Form struct {
	ID          int       `json:"id,omitempty"`
	PublicID    string    `json:"publicId,omitempty"`
	Version     int       `json:"version,omitempty"`
	Owner       string    `json:"-"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Published   bool      `json:"published"`
	Fields      []Field   `json:"fields" validate:"unique=ID,dive"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// FormSummary is the listing shape of a form, with its traffic counters.
type FormSummary struct {
	ID          int       `json:"id"`
	PublicID    string    `json:"publicId"`
	Version     int       `json:"version"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Published   bool      `json:"published"`
	Submissions int       `json:"submissions"`
	Views       int       `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Field struct {
	ID          string           `json:"id" validate:"required,max=64"`
	Type        string           `json:"type" validate:"required,fieldtype"`
	Label       string           `json:"label" validate:"required,max=500"`
	Placeholder string           `json:"placeholder,omitempty"`
	Options     []FieldOption    `json:"options,omitempty" validate:"dive"`
	Validation  *FieldValidation `json:"validation,omitempty"`
}

type FieldValidation struct {
	Required bool     `json:"required"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

func (f Field) Required() bool {
	return f.Validation != nil && f.Validation.Required
}

// FieldOption is either a plain string or a {label, value} pair in JSON.
type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Key is the value answers are matched against.
func (o FieldOption) Key() string {
	if o.Value != "" {
		return o.Value
	}
	return o.Label
}

func (o *FieldOption) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.Label, o.Value = s, s
		return nil
	}

	type plain FieldOption
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = FieldOption(p)
	return nil
}

type Submission struct {
	ID        int       `json:"id"`
	FormID    int       `json:"formId"`
	CreatedAt time.Time `json:"createdAt"`
	IP        string    `json:"-"`
	Answers   []Answer  `json:"answers"`
}

type Answer struct {
	FieldID string      `json:"fieldId"`
	Value   AnswerValue `json:"value"`
}

type View struct {
	FormID    int       `json:"formId"`
	CreatedAt time.Time `json:"createdAt"`
}

// DateRange bounds are inclusive; a zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

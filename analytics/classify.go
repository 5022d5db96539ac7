package analytics

import "github.com/mbolis/quick-forms/model"

// Category decides which section of the report a field lands in.
// CategoryNone fields are not analysed.
type Category int

const (
	CategoryNone Category = iota
	CategoryChoice
	CategoryText
	CategoryNumeric
)

// CategoryOf maps a field type to its analytics category.
func CategoryOf(fieldType string) Category {
	switch fieldType {
	case model.TypeRadioGroup, model.TypeSelect, model.TypeCheckbox:
		return CategoryChoice
	case model.TypeInput, model.TypeText, model.TypeTextarea, model.TypeEmail:
		return CategoryText
	case model.TypeNumberInput:
		return CategoryNumeric
	default:
		return CategoryNone
	}
}

type choiceAcc struct {
	keys   []string
	counts map[string]int
}

type textAcc struct {
	words map[string]int
}

type numericAcc struct {
	values []float64
}

// Accumulators holds the per-field state filled during one aggregation
// pass, keyed by field id. The three maps are disjoint.
type Accumulators struct {
	choice  map[string]*choiceAcc
	text    map[string]*textAcc
	numeric map[string]*numericAcc

	categories map[string]Category
}

// Classify creates an accumulator for every field that takes part in
// analytics. Choice accumulators start with every declared option at zero
// so unanswered options are still reported.
func Classify(fields []model.Field) *Accumulators {
	acc := &Accumulators{
		choice:     make(map[string]*choiceAcc),
		text:       make(map[string]*textAcc),
		numeric:    make(map[string]*numericAcc),
		categories: make(map[string]Category, len(fields)),
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true

		category := CategoryOf(f.Type)
		switch category {
		case CategoryChoice:
			c := &choiceAcc{counts: make(map[string]int, len(f.Options))}
			for _, opt := range f.Options {
				key := opt.Key()
				if _, ok := c.counts[key]; ok {
					continue
				}
				c.keys = append(c.keys, key)
				c.counts[key] = 0
			}
			acc.choice[f.ID] = c
		case CategoryText:
			acc.text[f.ID] = &textAcc{words: make(map[string]int)}
		case CategoryNumeric:
			acc.numeric[f.ID] = &numericAcc{}
		default:
			continue
		}
		acc.categories[f.ID] = category
	}

	return acc
}

// Category returns the category of a classified field, or CategoryNone.
func (acc *Accumulators) Category(fieldID string) Category {
	return acc.categories[fieldID]
}

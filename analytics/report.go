// Package analytics turns a form's raw submissions into the per-form
// dashboard report: trend lines, per-field distributions, word frequencies
// and numeric histograms. It performs no I/O; callers fetch and date-filter
// the records first.
package analytics

import (
	"sort"
	"time"

	"github.com/mbolis/quick-forms/model"
)

// Report is the analytics dashboard of one form over a date range.
type Report struct {
	SubmissionTrend        []TrendPoint       `json:"submissionTrend"`
	SubmissionsByDayOfWeek [7]int             `json:"submissionsByDayOfWeek"`
	SubmissionsByHourOfDay [24]int            `json:"submissionsByHourOfDay"`
	FieldAnalytics         []ChoiceAnalytics  `json:"fieldAnalytics"`
	TextAnalytics          []TextAnalytics    `json:"textAnalytics"`
	NumericAnalytics       []NumericAnalytics `json:"numericAnalytics"`
	Views                  int                `json:"views"`
	Submissions            int                `json:"submissions"`
	CompletionRate         float64            `json:"completionRate"`
	Funnel                 Funnel             `json:"funnel"`
}

// TrendPoint counts the submissions of one UTC day (YYYY-MM-DD).
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type OptionCount struct {
	Option string `json:"option"`
	Count  int    `json:"count"`
}

// ChoiceAnalytics holds the option counts of a radio, select or checkbox
// field, in declaration order.
type ChoiceAnalytics struct {
	FieldID string        `json:"fieldId"`
	Label   string        `json:"label"`
	Type    string        `json:"type"`
	Options []OptionCount `json:"options"`
}

// TextAnalytics holds the most frequent words of a free-text field.
type TextAnalytics struct {
	FieldID         string      `json:"fieldId"`
	Label           string      `json:"label"`
	Type            string      `json:"type"`
	WordFrequencies []WordCount `json:"wordFrequencies"`
}

type NumericAnalytics struct {
	FieldID string       `json:"fieldId"`
	Label   string       `json:"label"`
	Type    string       `json:"type"`
	Stats   NumericStats `json:"stats"`
}

// Funnel is the views to submissions drop-off.
type Funnel struct {
	Views       int `json:"views"`
	Submissions int `json:"submissions"`
}

// Engine computes reports. Weekday and hour histograms are bucketed in
// the engine's location; trend dates are always UTC.
type Engine struct {
	loc *time.Location
}

func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{loc: loc}
}

// Compute builds the report for one form. It never fails: answers that
// cannot be attributed to a field or category are skipped.
func (e *Engine) Compute(form model.Form, submissions []model.Submission, views []model.View) Report {
	acc := Classify(form.Fields)
	agg := newAggregator(acc, e.loc)
	for i := range submissions {
		agg.add(&submissions[i])
	}
	return assemble(form.Fields, acc, agg, len(submissions), len(views))
}

// Compute runs a UTC engine.
func Compute(form model.Form, submissions []model.Submission, views []model.View) Report {
	return NewEngine(time.UTC).Compute(form, submissions, views)
}

func assemble(fields []model.Field, acc *Accumulators, agg *aggregator, submissions, views int) Report {
	report := Report{
		SubmissionTrend:        trendPoints(agg.trend),
		SubmissionsByDayOfWeek: agg.byWeekday,
		SubmissionsByHourOfDay: agg.byHour,
		FieldAnalytics:         []ChoiceAnalytics{},
		TextAnalytics:          []TextAnalytics{},
		NumericAnalytics:       []NumericAnalytics{},
		Views:                  views,
		Submissions:            submissions,
		CompletionRate:         CompletionRate(submissions, views),
		Funnel:                 Funnel{Views: views, Submissions: submissions},
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true

		switch acc.categories[f.ID] {
		case CategoryChoice:
			c := acc.choice[f.ID]
			options := make([]OptionCount, len(c.keys))
			for i, key := range c.keys {
				options[i] = OptionCount{Option: key, Count: c.counts[key]}
			}
			report.FieldAnalytics = append(report.FieldAnalytics, ChoiceAnalytics{
				FieldID: f.ID, Label: f.Label, Type: f.Type, Options: options,
			})
		case CategoryText:
			report.TextAnalytics = append(report.TextAnalytics, TextAnalytics{
				FieldID: f.ID, Label: f.Label, Type: f.Type,
				WordFrequencies: TopWords(acc.text[f.ID].words, TopWordsLimit),
			})
		case CategoryNumeric:
			report.NumericAnalytics = append(report.NumericAnalytics, NumericAnalytics{
				FieldID: f.ID, Label: f.Label, Type: f.Type,
				Stats: SummarizeNumbers(acc.numeric[f.ID].values),
			})
		}
	}

	return report
}

// CompletionRate is submissions over views, or 0 without views.
func CompletionRate(submissions, views int) float64 {
	if views <= 0 {
		return 0
	}
	return float64(submissions) / float64(views)
}

func trendPoints(trend map[string]int) []TrendPoint {
	dates := make([]string, 0, len(trend))
	for d := range trend {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	points := make([]TrendPoint, 0, len(dates))
	for _, d := range dates {
		points = append(points, TrendPoint{Date: d, Count: trend[d]})
	}
	return points
}

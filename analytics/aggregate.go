package analytics

import (
	"strconv"
	"strings"
	"time"

	"github.com/mbolis/quick-forms/model"
)

const trendDateLayout = "2006-01-02"

// aggregator walks the submissions once and feeds every accumulator.
type aggregator struct {
	acc *Accumulators
	loc *time.Location

	trend     map[string]int
	byWeekday [7]int
	byHour    [24]int
}

func newAggregator(acc *Accumulators, loc *time.Location) *aggregator {
	return &aggregator{
		acc:   acc,
		loc:   loc,
		trend: make(map[string]int),
	}
}

func (a *aggregator) add(s *model.Submission) {
	a.trend[s.CreatedAt.UTC().Format(trendDateLayout)]++

	local := s.CreatedAt.In(a.loc)
	a.byWeekday[local.Weekday()]++
	a.byHour[local.Hour()]++

	for _, answer := range s.Answers {
		if answer.Value.IsNull() {
			continue
		}

		switch a.acc.categories[answer.FieldID] {
		case CategoryChoice:
			a.addChoice(a.acc.choice[answer.FieldID], answer.Value)
		case CategoryText:
			a.addText(a.acc.text[answer.FieldID], answer.Value)
		case CategoryNumeric:
			a.addNumber(a.acc.numeric[answer.FieldID], answer.Value)
		}
	}
}

func (a *aggregator) addChoice(c *choiceAcc, v model.AnswerValue) {
	var items []string
	switch v.Kind() {
	case model.ListValue:
		items = v.Items()
	case model.StringValue:
		items = []string{v.Str()}
	case model.NumberValue:
		items = []string{formatNumber(v.Num())}
	}

	for _, item := range items {
		// values of options removed from the schema are dropped
		if _, ok := c.counts[item]; ok {
			c.counts[item]++
		}
	}
}

func (a *aggregator) addText(t *textAcc, v model.AnswerValue) {
	var text string
	switch v.Kind() {
	case model.StringValue:
		text = v.Str()
	case model.NumberValue:
		text = formatNumber(v.Num())
	case model.ListValue:
		text = strings.Join(v.Items(), " ")
	}

	for _, word := range Tokenize(text) {
		t.words[word]++
	}
}

func (a *aggregator) addNumber(n *numericAcc, v model.AnswerValue) {
	switch v.Kind() {
	case model.NumberValue:
		if Aggregatable(v.Num()) {
			n.values = append(n.values, v.Num())
		}
	case model.StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64)
		if err == nil && Aggregatable(f) {
			n.values = append(n.values, f)
		}
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

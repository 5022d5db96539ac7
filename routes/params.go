package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mbolis/quick-forms/model"
)

const dateLayout = "2006-01-02"

var errRangeOrder = errors.New("from is after to")

func formID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

// dateRange reads the optional "from" and "to" query parameters. Both accept
// a plain date or an RFC3339 timestamp; a plain "to" date includes the whole
// day.
func dateRange(r *http.Request) (rng model.DateRange, err error) {
	q := r.URL.Query()

	if s := q.Get("from"); s != "" {
		rng.From, _, err = parseDate(s)
		if err != nil {
			return rng, fmt.Errorf("from: %w", err)
		}
	}
	if s := q.Get("to"); s != "" {
		var dateOnly bool
		rng.To, dateOnly, err = parseDate(s)
		if err != nil {
			return rng, fmt.Errorf("to: %w", err)
		}
		if dateOnly {
			rng.To = rng.To.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}

	if !rng.From.IsZero() && !rng.To.IsZero() && rng.From.After(rng.To) {
		return rng, errRangeOrder
	}
	return rng, nil
}

func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(dateLayout, s); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	return t, false, err
}

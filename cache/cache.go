// Package cache keeps computed analytics reports for a short time, so a
// dashboard refreshing several charts does not rescan every submission.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mbolis/quick-forms/analytics"
	"github.com/mbolis/quick-forms/model"
)

type ReportCache interface {
	// Get returns the cached report, if any.
	Get(ctx context.Context, key string) (*analytics.Report, bool, error)
	Set(ctx context.Context, key string, report *analytics.Report) error
}

// ReportKey identifies a report by form, form version and date range. The
// version changes whenever the field schema does.
func ReportKey(form model.Form, rng model.DateRange) string {
	return fmt.Sprintf("form:%d:v%d:analytics:%s:%s", form.ID, form.Version, rangeBound(rng.From), rangeBound(rng.To))
}

func rangeBound(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339Nano)
}

type noCache struct{}

// None is a cache that never stores anything.
func None() ReportCache {
	return noCache{}
}

func (noCache) Get(context.Context, string) (*analytics.Report, bool, error) {
	return nil, false, nil
}

func (noCache) Set(context.Context, string, *analytics.Report) error {
	return nil
}

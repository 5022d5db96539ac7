package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/cache"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/metrics"
	"github.com/mbolis/quick-forms/routes/middlewares"
)

// GetFormAnalytics aggregates the submissions and views of a form in the
// requested date range. Reports are cached per form version and range; a
// failing cache never fails the request.
func GetFormAnalytics(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := formID(r)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		rng, err := dateRange(r)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.date_range", "%s", err)
			return
		}

		owner := middlewares.OwnerFrom(r.Context())
		form, err := app.GetForm(r.Context(), owner, id)
		if err != nil {
			httpx.LogDBError(w, "get_form", id, err)
			return
		}

		key := cache.ReportKey(form, rng)
		cached, found, err := app.Reports.Get(r.Context(), key)
		metrics.RecordCacheLookup(found, err)
		if err != nil {
			log.WithFields(log.Fields{"key": key, "error": err}).Warn("analytics.cache_get")
		}
		if found {
			render.JSON(w, r, cached)
			return
		}

		submissions, err := app.FetchSubmissions(r.Context(), id, owner, rng)
		if err != nil {
			httpx.LogDBError(w, "fetch_submissions", id, err)
			return
		}
		views, err := app.FetchViews(r.Context(), id, rng)
		if err != nil {
			httpx.LogInternalError(w, "db.fetch_views", err)
			return
		}

		start := time.Now()
		report := app.Engine.Compute(form, submissions, views)
		elapsed := time.Since(start)
		metrics.RecordAnalytics(elapsed, len(submissions))

		log.WithFields(log.Fields{
			"form":        id,
			"submissions": len(submissions),
			"views":       len(views),
			"elapsed":     elapsed,
		}).Debug("analytics.computed")

		if err := app.Reports.Set(r.Context(), key, &report); err != nil {
			log.WithFields(log.Fields{"key": key, "error": err}).Warn("analytics.cache_set")
		}

		render.JSON(w, r, report)
	}
}

package routes

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/metrics"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/validation"
)

// GetPublicForm serves a published form to respondents, counting a view.
func GetPublicForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		publicID := chi.URLParam(r, "publicId")

		form, err := app.GetPublishedForm(r.Context(), publicID)
		if err != nil {
			httpx.LogDBError(w, "get_published_form", publicID, err)
			return
		}

		if err := app.InsertView(r.Context(), form.ID, time.Now()); err != nil {
			log.WithFields(log.Fields{"form": form.ID, "error": err}).Warn("view.record")
		} else {
			metrics.Views.Inc()
		}

		render.JSON(w, r, map[string]any{
			"publicId":    form.PublicID,
			"title":       form.Title,
			"description": form.Description,
			"fields":      form.Fields,
		})
	}
}

// inflight rejects a second submission from the same address to the same
// form while the first one is still being stored.
type inflight struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (f *inflight) acquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys[key] {
		return false
	}
	f.keys[key] = true
	return true
}

func (f *inflight) release(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
}

func SubmitForm(app app.App) http.HandlerFunc {
	pending := &inflight{keys: make(map[string]bool)}

	return func(w http.ResponseWriter, r *http.Request) {
		publicID := chi.URLParam(r, "publicId")

		submission := model.Submission{}
		err := render.DecodeJSON(r.Body, &submission)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		form, err := app.GetPublishedForm(r.Context(), publicID)
		if err != nil {
			httpx.LogDBError(w, "get_published_form", publicID, err)
			return
		}

		if errs := validation.ValidateAnswers(form, submission.Answers); errs != nil {
			httpx.LogValidation(w, r, "submit.validate", errs)
			return
		}

		ip := clientIP(r)
		key := strconv.Itoa(form.ID) + "|" + ip
		if !pending.acquire(key) {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "submit.in_progress")
			return
		}
		defer pending.release(key)

		submission.FormID = form.ID
		submission.IP = ip
		submission.CreatedAt = time.Now()

		id, err := app.InsertSubmission(r.Context(), form.ID, submission)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission", err)
			return
		}
		metrics.Submissions.Inc()

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": id,
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

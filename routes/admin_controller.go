package routes

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/routes/middlewares"
	"github.com/mbolis/quick-forms/validation"
)

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := model.Form{}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if errs := validation.ValidateStruct(&form); errs != nil {
			httpx.LogValidation(w, r, "create_form.validate", errs)
			return
		}

		owner := middlewares.OwnerFrom(r.Context())
		form, err = app.CreateForm(r.Context(), owner, form)
		if err != nil {
			httpx.LogInternalError(w, "db.create_form", err)
			return
		}

		log.WithFields(log.Fields{"owner": owner, "form": form.ID}).Info("form.created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, form)
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := app.ListForms(r.Context(), middlewares.OwnerFrom(r.Context()))
		if err != nil {
			httpx.LogInternalError(w, "db.list_forms", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func GetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := formID(r)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		form, err := app.GetForm(r.Context(), middlewares.OwnerFrom(r.Context()), id)
		if err != nil {
			httpx.LogDBError(w, "get_form", id, err)
			return
		}

		render.JSON(w, r, form)
	}
}

// UpdateForm replaces the form definition. The body must carry the version
// it was based on; a stale version is answered with 409.
func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := formID(r)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		form := model.Form{}
		err = render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		form.ID = id

		if errs := validation.ValidateStruct(&form); errs != nil {
			httpx.LogValidation(w, r, "update_form.validate", errs)
			return
		}

		version, err := app.UpdateForm(r.Context(), middlewares.OwnerFrom(r.Context()), form)
		if err != nil {
			httpx.LogDBError(w, "update_form", id, err)
			return
		}

		render.JSON(w, r, map[string]any{
			"id":      id,
			"version": version,
		})
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := formID(r)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		owner := middlewares.OwnerFrom(r.Context())
		err = app.DeleteForm(r.Context(), owner, id)
		if err != nil {
			httpx.LogDBError(w, "delete_form", id, err)
			return
		}

		log.WithFields(log.Fields{"owner": owner, "form": id}).Info("form.deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

// PublishForm makes a form reachable, or not, through its public id.
func PublishForm(app app.App, published bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := formID(r)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		err = app.SetPublished(r.Context(), middlewares.OwnerFrom(r.Context()), id, published)
		if err != nil {
			httpx.LogDBError(w, "set_published", id, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetFormSubmissions(app app.App) http.HandlerFunc {
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

		submissions, err := app.FetchSubmissions(r.Context(), id, middlewares.OwnerFrom(r.Context()), rng)
		if err != nil {
			httpx.LogDBError(w, "get_submissions", id, err)
			return
		}

		render.JSON(w, r, map[string]any{
			"submissions": submissions,
		})
	}
}

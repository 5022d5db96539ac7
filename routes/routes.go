package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.RequestID)
	if app.TrustProxy {
		root.Use(middleware.RealIP)
	}
	root.Use(
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Logger, NoColor: true}),
		middleware.Recoverer,
	)

	root.Get("/health", health(app))
	root.Method(http.MethodGet, "/metrics", promhttp.Handler())

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()
	api.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	api.Group(func(r chi.Router) {
		if app.SubmitRate > 0 {
			r.Use(httprate.LimitByIP(app.SubmitRate, time.Minute))
		}

		r.Get("/f/{publicId}", GetPublicForm(app))
		r.Post("/f/{publicId}/submissions", SubmitForm(app))
	})

	api.Route("/forms", func(r chi.Router) {
		r.Use(middlewares.Owner(app.TokenSecret))

		// CRUD form
		r.Post("/", CreateForm(app))
		r.Get("/", ListForms(app))
		r.Get(`/{id:^\d+$}`, GetForm(app))
		r.Put(`/{id:^\d+$}`, UpdateForm(app))
		r.Delete(`/{id:^\d+$}`, DeleteForm(app))

		r.Post(`/{id:^\d+$}/publish`, PublishForm(app, true))
		r.Post(`/{id:^\d+$}/unpublish`, PublishForm(app, false))

		r.Get(`/{id:^\d+$}/submissions`, GetFormSubmissions(app))
		r.Get(`/{id:^\d+$}/analytics`, GetFormAnalytics(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func health(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := app.PingContext(r.Context()); err != nil {
			httpx.LogInternalError(w, "health.db", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"status": "ok",
		})
	}
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fasion-image-generator-project/FashionFusion/internal/http/handlers"
	"github.com/fasion-image-generator-project/FashionFusion/internal/middleware"
)

type Options struct {
	Locale          string
	CORSOrigins     []string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger, app.Metrics),
		chimw.Recoverer,
		middleware.CORS(opts.CORSOrigins),
		middleware.I18N(opts.Locale, opts.CountryLookup),
	)

	// Health
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/backend/health", app.BackendHealth)
	r.Method(http.MethodGet, "/metrics", app.Metrics.Handler())
	r.Get(handlers.OpenAPIPath, app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))

		r.Get("/v1/models", app.Models)

		r.Route("/v1/session", func(r chi.Router) {
			r.Get("/", app.SessionState)
			r.Post("/prompt", app.SessionPrompt)
			r.Post("/transform", app.SessionTransform)
			r.Post("/regenerate", app.SessionRegenerate)
			r.Post("/reset", app.SessionReset)
			r.Put("/model", app.SessionModel)
			r.Put("/initial-model", app.SessionInitialModel)
			r.Put("/style-params", app.SessionStyleParams)
			r.Post("/restore/{id}", app.SessionRestore)
		})

		r.Route("/v1/history", func(r chi.Router) {
			r.Get("/", app.HistoryList)
			r.Delete("/", app.HistoryClear)
			r.Get("/export", app.HistoryExport)
			r.Post("/import", app.HistoryImport)
			r.Get("/{id}", app.HistoryGet)
			r.Delete("/{id}", app.HistoryDelete)
		})

		r.Route("/v1/preferences/theme", func(r chi.Router) {
			r.Get("/", app.ThemeGet)
			r.Put("/", app.ThemeSet)
			r.Post("/toggle", app.ThemeToggle)
		})

		r.Route("/v1/presets", func(r chi.Router) {
			r.Get("/", app.PresetsList)
			r.Post("/", app.PresetsSave)
			r.Put("/params", app.PresetsParam)
			r.Post("/apply/{name}", app.PresetsApply)
			r.Post("/reset", app.PresetsReset)
			r.Delete("/{name}", app.PresetsDelete)
		})

		r.Route("/v1/stylemix/jobs", func(r chi.Router) {
			r.Post("/", app.StyleMixSubmit)
			r.Get("/{id}", app.StyleMixStatus)
			r.Get("/{id}/download", app.StyleMixDownload)
		})
	})

	return r
}

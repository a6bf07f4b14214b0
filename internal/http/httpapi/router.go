package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"echomail/internal/http/handlers"
	"echomail/internal/middleware"
)

// NewRouter wires the full HTTP surface. Everything except the health
// probe sits behind the device JWT; generation and transcription are
// additionally rate limited.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Cfg.CORSOrigins),
		middleware.I18N(app.Cfg.DefaultLocale, lookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Cfg.JWTSecret))

		r.Route("/v1/access", func(r chi.Router) {
			r.Get("/", app.Access)
			r.Post("/trial/start", app.StartTrial)
			r.Put("/tier", app.SaveTier)
			r.Put("/identity", app.SaveIdentity)
		})

		r.Route("/v1/settings/api-key", func(r chi.Router) {
			r.Put("/", app.SaveAPIKey)
			r.Delete("/", app.DeleteAPIKey)
		})

		r.Route("/v1/billing", func(r chi.Router) {
			r.Post("/checkout", app.CreateCheckout)
			r.Post("/verify-session", app.VerifyCheckout)
			r.Post("/subscription-status", app.SubscriptionStatus)
		})

		r.Route("/v1/profiles", func(r chi.Router) {
			r.Get("/", app.ListProfiles)
			r.Post("/", app.CreateProfile)
			r.Get("/{id}", app.GetProfile)
			r.Put("/{id}", app.UpdateProfile)
			r.Delete("/{id}", app.DeleteProfile)
			r.Get("/{id}/export", app.ExportProfile)
			r.Get("/{id}/catalog", app.Catalog)
			r.Put("/{id}/catalog", app.SaveCatalog)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute))
			r.Post("/v1/generate", app.Generate)
			r.Post("/v1/transcribe", app.Transcribe)
		})
	})

	return r
}

package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"moodboard/internal/http/handlers"
	"moodboard/internal/middleware"
)

// RouterOptions carries the middleware settings from Config.
type RouterOptions struct {
	JWTSecret       string
	CORSOrigins     []string
	RateLimitPerMin int
	Logger          zerolog.Logger
}

func NewRouter(app *handlers.App, opts RouterOptions) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.CORSOrigins),
		middleware.RateLimit(opts.RateLimitPerMin, time.Minute),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/providers", app.Providers)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(opts.JWTSecret))

			r.Get("/credits", app.Credits)

			r.Route("/items/{item_id}", func(r chi.Router) {
				r.Get("/", app.GetItem)
				r.Post("/enhance", app.EnhanceItem)
				r.Get("/enhancement", app.EnhancementStatus)
				r.Post("/toggle-original", app.ToggleOriginal)
			})

			r.Route("/moodboards/{moodboard_id}", func(r chi.Router) {
				r.Get("/enhancements", app.MoodboardEnhancements)
				r.Get("/enhancements/total", app.MoodboardTotalCost)
				r.Get("/stats", app.MoodboardStats)
			})
		})
	})

	return r
}

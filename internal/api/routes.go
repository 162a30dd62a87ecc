package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/novena-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET    /health                        liveness + database health
//	GET    /api/v1/easter/{year}          Easter Sunday for a year
//	GET    /api/v1/anchors/{year}         full anchor table for a year
//	GET    /api/v1/calendar/{year}        observances keyed by date
//	GET    /api/v1/calendar/{year}/ics    iCalendar export of the year
//	GET    /api/v1/novenas                stored definitions
//	GET    /api/v1/novenas/{id}/{year}    one definition resolved for a year
//	GET    /api/v1/novenas/year/{year}    every definition resolved for a year
//	POST   /api/v1/admin/novenas          upsert a definition (API key)
//	DELETE /api/v1/admin/novenas/{id}     delete a definition (API key)
//	POST   /api/v1/admin/parse            parse a date phrase (API key)
func SetupRoutes(handlers *Handlers, cfg *config.Config, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(log),
		RequestIDMiddleware(),
		LoggingMiddleware(log),
		CORSMiddleware(),
	)

	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/easter/{year}", handlers.GetEaster)
		r.Get("/anchors/{year}", handlers.GetAnchors)
		r.Get("/calendar/{year}", handlers.GetCalendar)
		r.Get("/calendar/{year}/ics", handlers.GetCalendarICS)

		r.Get("/novenas", handlers.ListNovenas)
		r.Get("/novenas/year/{year}", handlers.GetNovenasForYear)
		r.Get("/novenas/{id}/{year}", handlers.GetNovenaForYear)

		r.Route("/admin", func(r chi.Router) {
			r.Use(AuthMiddleware(cfg, log))
			r.Post("/novenas", handlers.UpsertNovena)
			r.Delete("/novenas/{id}", handlers.DeleteNovena)
			r.Post("/parse", handlers.ParsePhrase)
		})
	})

	return r
}

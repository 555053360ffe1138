// Package api assembles the HTTP surface of the dispatch service.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kilianp07/techdispatch/api/runs"
	"github.com/kilianp07/techdispatch/api/schedule"
	"github.com/kilianp07/techdispatch/core/dispatch/logging"
	"github.com/kilianp07/techdispatch/core/logger"
)

// Version is reported by GET /.
const Version = "1.0.0"

// Options configures NewRouter.
type Options struct {
	Planner schedule.Planner
	// Store backs GET /api/runs. Nil disables the endpoint.
	Store        logging.LogStore
	RateLimit    float64
	Burst        int
	MaxBodyBytes int64
	Timeout      time.Duration
	Log          logger.Logger
}

// NewRouter builds the root router.
func NewRouter(opts Options) http.Handler {
	log := logger.OrNop(opts.Log)
	h := schedule.NewHandler(opts.Planner, Version, opts.MaxBodyBytes, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	if opts.Timeout > 0 {
		r.Use(middleware.Timeout(opts.Timeout))
	}

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Route("/api", func(api chi.Router) {
		if opts.RateLimit > 0 {
			api.Use(RateLimit(opts.RateLimit, opts.Burst))
		}
		api.Post("/schedule", h.Schedule)
		if opts.Store != nil {
			api.Method(http.MethodGet, "/runs", runs.NewHandler(opts.Store))
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found"}`))
	})
	return r
}

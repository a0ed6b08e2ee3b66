package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Advisor/internal/analyze"
	"github.com/MikeSquared-Agency/Advisor/internal/session"
	"github.com/MikeSquared-Agency/Advisor/internal/store"
)

type RouterConfig struct {
	AdminToken        string
	RequestsPerMinute int
}

// NewRouter wires the advisor API. The journal may be nil, in which case the
// admin endpoints answer 503.
func NewRouter(m *session.Manager, scorer analyze.Client, journal store.Store, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.RequestsPerMinute))

	sessions := NewSessionsHandler(m, logger)
	results := NewResultsHandler(m, scorer, logger)
	admin := NewAdminHandler(journal)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/vocabulary", Vocabulary)

		r.Post("/sessions", sessions.Create)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", sessions.Get)
			r.Delete("/", sessions.Delete)
			r.Put("/weights/{criterion}", sessions.SetWeight)
			r.Post("/tags/{tag}/toggle", sessions.ToggleTag)
			r.Put("/scenario", sessions.EditScenario)
			r.Patch("/profile", sessions.UpdateProfile)
			r.Post("/analyze", sessions.Analyze)

			r.Get("/results/{index}/breakdown", results.Breakdown)
			r.Get("/report", results.Report)
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminToken))
			r.Get("/admin/submissions", admin.Submissions)
			r.Get("/admin/stats", admin.Stats)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

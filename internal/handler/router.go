package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taskboard/taskboard-go/internal/middleware"
	"github.com/taskboard/taskboard-go/internal/observability"
)

const healthTimeout = 2 * time.Second

// RouterConfig collects what NewRouter mounts. Metrics, Limiter and Ping are optional.
type RouterConfig struct {
	Auth     *AuthHandler
	Projects *ProjectHandler
	Tasks    *TaskHandler
	Verifier middleware.TokenVerifier
	Metrics  *observability.Metrics
	Logger   *slog.Logger
	Limiter  func(http.Handler) http.Handler
	Ping     func(ctx context.Context) error
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := loggerOrDefault(cfg.Logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger(logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Get("/health", healthHandler(cfg.Ping))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Verifier, logger, cfg.Metrics))

		r.Group(func(r chi.Router) {
			if cfg.Limiter != nil {
				r.Use(cfg.Limiter)
			}
			r.Post("/auth/register", cfg.Auth.HandleRegister)
			r.Post("/auth/login", cfg.Auth.HandleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireIdentity)

			r.Get("/auth/me", cfg.Auth.HandleMe)

			r.Post("/projects", cfg.Projects.HandleCreate)
			r.Get("/projects", cfg.Projects.HandleList)
			r.Get("/projects/{project_id}", cfg.Projects.HandleGet)
			r.Delete("/projects/{project_id}", cfg.Projects.HandleDelete)
			r.Get("/projects/{project_id}/tasks", cfg.Tasks.HandleListByProject)

			r.Post("/tasks", cfg.Tasks.HandleCreate)
			r.Get("/tasks/{task_id}", cfg.Tasks.HandleGet)
			r.Put("/tasks/{task_id}", cfg.Tasks.HandleUpdate)
			r.Delete("/tasks/{task_id}", cfg.Tasks.HandleDelete)
		})
	})

	return r
}

// healthHandler answers ok, or 503 when the database does not respond.
func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

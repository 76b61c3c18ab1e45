// Package httpapi assembles the HTTP surface: the shared middleware chain,
// health and metrics endpoints, and every module's routes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"opsdesk/pkg/platform/httputil"
	authmw "opsdesk/pkg/platform/middleware/auth"
	request "opsdesk/pkg/platform/middleware/request"
	"opsdesk/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// HealthCheck probes one dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Module mounts its routes on the authenticated API group.
type Module interface {
	Register(r chi.Router)
}

// Config carries everything the router needs. Validator may be nil, which
// leaves the API unauthenticated. Clock defaults to time.Now.
type Config struct {
	Logger    *slog.Logger
	Clock     func() time.Time
	Latency   request.LatencyObserver
	Validator authmw.TokenValidator
	Metrics   http.Handler
	Health    []HealthCheck
	Modules   []Module
}

// NewRouter wires public endpoints and the API group.
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.New(cfg.Clock))
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.Latency(cfg.Latency))

	r.Get("/health", healthHandler(cfg.Health))
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Group(func(api chi.Router) {
		api.Use(request.ContentTypeJSON)
		api.Use(authmw.RequireOperator(cfg.Validator, cfg.Logger))
		api.Use(authmw.ReadOnlyViewers(cfg.Logger))
		for _, m := range cfg.Modules {
			m.Register(api)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				resp.Checks[c.Name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.Name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}

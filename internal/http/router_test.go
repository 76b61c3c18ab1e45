package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmw "opsdesk/pkg/platform/middleware/auth"
	"opsdesk/pkg/requestcontext"
)

type echoModule struct{}

func (echoModule) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(requestcontext.Operator(r.Context())))
	})
	r.Post("/whoami", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*authmw.OperatorClaims, error) {
	switch token {
	case "good":
		return &authmw.OperatorClaims{Operator: "ops@example.test", Role: authmw.RoleOperator}, nil
	case "viewer":
		return &authmw.OperatorClaims{Operator: "exec@example.test", Role: authmw.RoleViewer}, nil
	}
	return nil, errors.New("bad token")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	t.Run("ok without checks", func(t *testing.T) {
		r := NewRouter(Config{Logger: quietLogger()})
		rr := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("degraded when a dependency fails", func(t *testing.T) {
		r := NewRouter(Config{Logger: quietLogger(), Health: []HealthCheck{
			{Name: "postgres", Check: func(context.Context) error { return nil }},
			{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: refused") }},
		}})
		rr := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.JSONEq(t, `{"status":"degraded","checks":{"postgres":"ok","redis":"unavailable"}}`, rr.Body.String())
	})
}

func TestAPIGroupAuth(t *testing.T) {
	t.Run("open when no validator is configured", func(t *testing.T) {
		r := NewRouter(Config{Logger: quietLogger(), Modules: []Module{echoModule{}}})
		rr := serve(r, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("requires a bearer token when configured", func(t *testing.T) {
		r := NewRouter(Config{Logger: quietLogger(), Validator: stubValidator{}, Modules: []Module{echoModule{}}})

		rr := serve(r, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer good")
		rr = serve(r, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ops@example.test", rr.Body.String())
	})

	t.Run("health stays public", func(t *testing.T) {
		r := NewRouter(Config{Logger: quietLogger(), Validator: stubValidator{}})
		rr := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("viewer tokens are read-only", func(t *testing.T) {
		r := NewRouter(Config{Logger: quietLogger(), Validator: stubValidator{}, Modules: []Module{echoModule{}}})

		get := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		get.Header.Set("Authorization", "Bearer viewer")
		assert.Equal(t, http.StatusOK, serve(r, get).Code)

		post := httptest.NewRequest(http.MethodPost, "/whoami", nil)
		post.Header.Set("Authorization", "Bearer viewer")
		assert.Equal(t, http.StatusForbidden, serve(r, post).Code)

		post = httptest.NewRequest(http.MethodPost, "/whoami", nil)
		post.Header.Set("Authorization", "Bearer good")
		assert.Equal(t, http.StatusNoContent, serve(r, post).Code)
	})
}

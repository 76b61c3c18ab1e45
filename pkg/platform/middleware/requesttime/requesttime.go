// Package requesttime pins one evaluation instant per request so every
// result, score and notification in a response agrees on "now".
package requesttime

import (
	"net/http"
	"time"

	"opsdesk/pkg/requestcontext"
)

// AsOfParam lets a caller replay a read at a past instant (RFC 3339).
const AsOfParam = "asOf"

// New returns middleware that stamps each request with now(), or with the
// asOf query parameter when one is given. A malformed asOf is a 400.
func New(now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			at := now().UTC()
			if raw := r.URL.Query().Get(AsOfParam); raw != "" {
				parsed, err := time.Parse(time.RFC3339, raw)
				if err != nil {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusBadRequest)
					_, _ = w.Write([]byte(`{"error":"bad_request","error_description":"asOf must be an RFC 3339 timestamp"}`))
					return
				}
				at = parsed.UTC()
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), at)))
		})
	}
}

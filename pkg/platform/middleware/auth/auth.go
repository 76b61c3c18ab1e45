package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	request "opsdesk/pkg/platform/middleware/request"
	"opsdesk/pkg/requestcontext"
)

// Roles carried in operator tokens. Viewers may only read.
const (
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// KnownRole reports whether role is one the API understands.
func KnownRole(role string) bool {
	return role == RoleOperator || role == RoleViewer
}

// TokenValidator validates operator bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*OperatorClaims, error)
}

// OperatorClaims are the token facts the API acts on.
type OperatorClaims struct {
	Operator string
	Role     string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireOperator rejects requests without a valid bearer token and stores the
// operator and role in the request context. A nil validator disables auth.
func RequireOperator(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithOperator(ctx, claims.Operator)
			ctx = requestcontext.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ReadOnlyViewers refuses every method other than GET and HEAD for viewer
// tokens. Requests without a role (auth disabled) pass.
func ReadOnlyViewers(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if requestcontext.Role(ctx) == RoleViewer {
				logger.WarnContext(ctx, "viewer attempted a write",
					"operator", requestcontext.Operator(ctx),
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Viewer tokens are read-only")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/logger"
)

// SessionHeader identifies the shopper's cart session.
const SessionHeader = "X-Session-ID"

// RequestLogger stores a request-scoped logger carrying correlation_id,
// session_id and trace ids in the context. Mount it after RequestLogging and
// Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if logger.SessionIDFromContext(ctx) == "" {
				if sid := r.Header.Get(SessionHeader); sid != "" {
					ctx = logger.WithSessionID(ctx, sid)
				}
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

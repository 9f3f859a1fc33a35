package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/httputil"
	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/logger"
	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/middleware"
)

type contextKey string

const sessionIDKey contextKey = "session_id"

// maxSessionIDLen caps the header so it cannot blow up cache keys.
const maxSessionIDLen = 128

// SessionFromHeader reads the X-Session-ID header set by the storefront
// frontend and stores it in the request context. Requests without one are
// rejected with 400.
func SessionFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := strings.TrimSpace(r.Header.Get(middleware.SessionHeader))
		if sid == "" || len(sid) > maxSessionIDLen {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:      "MISSING_SESSION",
					Message:   middleware.SessionHeader + " header is required",
					RequestID: logger.CorrelationIDFromContext(r.Context()),
				},
			})
			return
		}
		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		if logger.SessionIDFromContext(ctx) == "" {
			ctx = logger.WithSessionID(ctx, sid)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}

// checkoutRateKey charges checkout attempts to the client address. The
// session header is chosen by the client, so it cannot identify a caller.
func checkoutRateKey(r *http.Request) string {
	return "ip:" + middleware.ClientIP(r)
}

// ContentTypeJSON rejects request bodies that are not application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

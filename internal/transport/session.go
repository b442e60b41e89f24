package transport

import (
	"context"
	"net/http"
)

// SessionHeader selects the activity scope of a request.
const SessionHeader = "X-Statusboard-Session"

type sessionKey struct{}

// SessionIDFromContext returns the session ID from context, if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionKey{}).(string)
	return sessionID, ok
}

// WithSessionID stores sessionID in ctx.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionMiddleware extracts SessionHeader and stores it in context.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionID := r.Header.Get(SessionHeader); sessionID != "" {
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

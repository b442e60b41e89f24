package transport

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

// TokenVerifier checks a bearer token.
type TokenVerifier interface {
	Verify(token string) error
}

// StaticToken accepts exactly one shared token.
type StaticToken string

// Verify compares in constant time.
func (s StaticToken) Verify(token string) error {
	if s == "" || subtle.ConstantTimeCompare([]byte(s), []byte(token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing bearer token", Code: "unauthorized"})
				return
			}
			if err := verifier.Verify(token); err != nil {
				WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid bearer token", Code: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

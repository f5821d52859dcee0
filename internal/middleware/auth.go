package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/tobilg/otlp-langfuse-bridge/internal/api"
)

// BearerAuthMiddleware requires a matching bearer token on every request.
// An empty apiKey disables authentication entirely.
func BearerAuthMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				api.WriteError(w, http.StatusUnauthorized, "invalid or missing API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

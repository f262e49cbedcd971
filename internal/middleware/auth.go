package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyMiddleware guards the ops endpoints with a static API key in the
// X-API-Key header. An empty configured key locks the surface entirely;
// the pipeline itself never goes through HTTP.
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-API-Key")

			if apiKey == "" || provided == "" ||
				subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

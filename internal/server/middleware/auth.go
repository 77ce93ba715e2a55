// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"crypto/subtle"
	"net/http"
)

// apiKeyHeader carries the admin key on protected requests.
const apiKeyHeader = "X-API-Key"

// RequireAPIKey creates middleware that rejects requests whose X-API-Key
// header does not match the configured admin key. The comparison is
// constant time.
func RequireAPIKey(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(apiKeyHeader)
			if provided == "" {
				unauthorized(w)
				return
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"invalid or missing API key"}`)) //nolint:errcheck
}

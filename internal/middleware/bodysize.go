package middleware

import (
	"net/http"
)

// Body size limits.
const (
	// MaxJSONBodySize is the maximum size for JSON API requests (1MB).
	MaxJSONBodySize = 1 << 20
)

// BodySizeLimiter limits the size of request bodies. It rejects oversized
// Content-Length up front and wraps the body for chunked requests.
func BodySizeLimiter(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > maxBytes {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}

// BodySizeLimiterJSON returns a middleware limiting JSON API request bodies.
func BodySizeLimiterJSON() func(http.Handler) http.Handler {
	return BodySizeLimiter(MaxJSONBodySize)
}

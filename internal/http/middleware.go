package http

import (
	"net/http"
	"strings"
)

// The API serves JSON only, so everything is locked down by default. Swagger
// UI is the one HTML surface and needs its scripts, styles, and images.
const (
	cspDefault = "default-src 'none'"
	cspSwagger = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"
)

// SecurityHeaders adds security-related headers to all responses.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if strings.HasPrefix(r.URL.Path, "/swagger/") {
			w.Header().Set("Content-Security-Policy", cspSwagger)
		} else {
			w.Header().Set("Content-Security-Policy", cspDefault)
		}

		next.ServeHTTP(w, r)
	})
}

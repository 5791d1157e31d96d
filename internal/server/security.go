package server

import (
	"net/http"
	"slices"
	"strings"
)

// SecurityConfig controls response hardening headers, CORS and the largest
// index a request may ask for.
type SecurityConfig struct {
	EnableCORS     bool
	AllowedOrigins []string
	AllowedMethods []string
	// MaxNValue bounds n; zero disables the check.
	MaxNValue uint64
}

// DefaultMaxN keeps a single request to a few seconds of work with the
// logarithmic algorithm.
const DefaultMaxN = 10_000_000

func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxNValue:      DefaultMaxN,
	}
}

// SecurityMiddleware sets hardening headers, answers CORS preflight
// requests and adds CORS headers for allowed origins.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if config.EnableCORS {
			origin := r.Header.Get("Origin")
			allowed := ""
			if slices.Contains(config.AllowedOrigins, "*") {
				allowed = "*"
			} else if origin != "" && slices.Contains(config.AllowedOrigins, origin) {
				allowed = origin
			}
			if allowed != "" {
				h.Set("Access-Control-Allow-Origin", allowed)
				h.Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", "Content-Type, Accept, "+RequestIDHeader)
				h.Set("Access-Control-Max-Age", "86400")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next(w, r)
	}
}

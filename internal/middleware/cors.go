package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows cross-origin calls with credentials. A "*" entry accepts every
// origin; the request origin is echoed back since browsers reject a literal
// wildcard on credentialed responses.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodOptions, http.MethodHead,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           600,
	}

	if allowsAnyOrigin(allowedOrigins) {
		opts.AllowOriginFunc = func(_ *http.Request, _ string) bool { return true }
	} else {
		opts.AllowedOrigins = allowedOrigins
	}

	return cors.Handler(opts)
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// Package httpx holds HTTP middleware shared by the routeradar API.
package httpx

import (
	"net/http"
	"slices"
	"time"

	"github.com/mfreeman451/routeradar/pkg/config"
	"github.com/mfreeman451/routeradar/pkg/logger"
)

// CommonMiddleware sets CORS headers for allowed origins, answers
// preflight requests and logs every request at debug level.
func CommonMiddleware(next http.Handler, cors config.CORSConfig, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		origin := r.Header.Get("Origin")
		if allowedOrigin(cors.AllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if cors.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// allowedOrigin reports whether origin may call the API. "*" allows any.
func allowedOrigin(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}

	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

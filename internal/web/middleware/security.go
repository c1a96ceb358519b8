package middleware

import (
	"net/http"

	"github.com/shindakun/csmarket/internal/config"
)

// SecurityHeaders creates middleware that adds HTTP security headers to all responses
func SecurityHeaders(cfg *config.Config) func(http.Handler) http.Handler {
	headers := cfg.Server.Security.Headers
	https := cfg.IsHTTPS()

	set := func(h http.Header, name, value string) {
		if value != "" {
			h.Set(name, value)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			set(h, "X-Frame-Options", headers.XFrameOptions)
			set(h, "X-Content-Type-Options", headers.XContentTypeOptions)
			set(h, "Referrer-Policy", headers.ReferrerPolicy)
			set(h, "Content-Security-Policy", headers.ContentSecurityPolicy)

			// HSTS only makes sense when the front is served over TLS
			if https {
				set(h, "Strict-Transport-Security", headers.StrictTransportSecurity)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Package security holds response hardening middleware for the widget host.
package security

import (
	"net/http"
	"strconv"
	"strings"
)

// DefaultContentSecurityPolicy allows the listing's own assets plus inline
// style attributes, which the like icon uses for its highlight.
const DefaultContentSecurityPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'"

// Headers configures security headers for HTTP responses.
type Headers struct {
	Enable                bool
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	ContentSecurityPolicy string
}

// Middleware attaches security headers, including the content security
// policy, to each response.
func (h Headers) Middleware(next http.Handler) http.Handler {
	csp := strings.TrimSpace(h.ContentSecurityPolicy)
	if csp == "" {
		csp = DefaultContentSecurityPolicy
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.Enable {
			next.ServeHTTP(w, r)
			return
		}
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "same-origin")
		headers.Set("Content-Security-Policy", csp)
		if h.EnableHSTS && r.TLS != nil {
			maxAge := h.HSTSMaxAge
			if maxAge <= 0 {
				maxAge = 31536000
			}
			value := "max-age=" + strconv.Itoa(maxAge)
			if h.HSTSIncludeSubdomains {
				value += "; includeSubDomains"
			}
			headers.Set("Strict-Transport-Security", value)
		}
		next.ServeHTTP(w, r)
	})
}

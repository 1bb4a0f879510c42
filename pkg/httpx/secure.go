package httpx

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecureHeaders sets the browser security headers on every response. The
// dashboard is never framed and serves only same-origin content.
func SecureHeaders(production bool) Middleware {
	s := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !production,
	})
	return func(next http.Handler) http.Handler {
		return s.Handler(next)
	}
}

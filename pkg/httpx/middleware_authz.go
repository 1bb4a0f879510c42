package httpx

import (
	"net/http"
	"slices"
	"strings"

	"github.com/aussiebroadwan/firegate/pkg/slogx"
)

// RequireAnyRole allows the request only when the session role is one of
// roles. It must run after AuthnMiddleware.
func RequireAnyRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := roleFromCtx(r.Context())
			if slices.Contains(roles, role) {
				next.ServeHTTP(w, r)
				return
			}

			slogx.FromContext(r.Context()).Warn("role not permitted",
				"role", role,
				"required", roles,
			)
			WriteJSON(w, http.StatusForbidden, map[string]string{
				"error":             "insufficient_role",
				"error_description": "requires one of: " + strings.Join(roles, ", "),
			})
		})
	}
}

package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/firegate/pkg/jwtx"
	"github.com/aussiebroadwan/firegate/pkg/slogx"
)

var (
	ErrNoSession      = errors.New("httpx: no session token")
	ErrSessionRevoked = errors.New("httpx: session revoked")
)

// SessionChecker reports whether a session id is still live. Logout revokes
// the session so a signed but revoked token stops working before it expires.
type SessionChecker interface {
	SessionActive(ctx context.Context, sid string) (bool, error)
}

// SessionAuth resolves the caller's session from a request.
type SessionAuth struct {
	Verifier   jwtx.Verifier
	Sessions   SessionChecker
	CookieName string
}

// TokenFromRequest returns the session token from the cookie, falling back
// to an Authorization Bearer header.
func (a SessionAuth) TokenFromRequest(r *http.Request) string {
	if a.CookieName != "" {
		if c, err := r.Cookie(a.CookieName); err == nil && c.Value != "" {
			return c.Value
		}
	}
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return ""
}

// Authenticate verifies the request's session token and checks that the
// session has not been revoked.
func (a SessionAuth) Authenticate(r *http.Request) (jwtx.Claims, error) {
	raw := a.TokenFromRequest(r)
	if raw == "" {
		return jwtx.Claims{}, ErrNoSession
	}

	claims, err := a.Verifier.Verify(raw)
	if err != nil {
		return jwtx.Claims{}, err
	}

	if a.Sessions != nil {
		active, err := a.Sessions.SessionActive(r.Context(), claims.SID)
		if err != nil {
			return jwtx.Claims{}, fmt.Errorf("httpx: check session: %w", err)
		}
		if !active {
			return jwtx.Claims{}, ErrSessionRevoked
		}
	}
	return claims, nil
}

// LoadSession attaches the session claims to the context when the request
// carries a valid session and lets anonymous requests through untouched.
func LoadSession(a SessionAuth) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.Authenticate(r)
			if err != nil {
				if !errors.Is(err, ErrNoSession) {
					slogx.FromContext(r.Context()).Debug("ignoring invalid session", "err", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			ctx := ContextWithClaims(r.Context(), claims)
			ctx = slogx.WithPrincipal(ctx, claims.Subject, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthnMiddleware rejects requests without a valid, unrevoked session.
func AuthnMiddleware(a SessionAuth) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.Authenticate(r)
			if err != nil {
				if !errors.Is(err, ErrNoSession) {
					slogx.FromContext(r.Context()).Warn("session rejected", "err", err)
				}
				writeUnauthorized(w, "session is missing, invalid, expired or revoked")
				return
			}
			ctx := ContextWithClaims(r.Context(), claims)
			ctx = slogx.WithPrincipal(ctx, claims.Subject, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_session",
		"error_description": desc,
	})
}

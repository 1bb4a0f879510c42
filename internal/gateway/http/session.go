package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/routing"
	"github.com/aussiebroadwan/firegate/internal/gateway/service"
	"github.com/aussiebroadwan/firegate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/firegate/pkg/httpx"
	"github.com/aussiebroadwan/firegate/pkg/slogx"
)

// SessionHandler returns the signed-in principal.
type SessionHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP returns the current session.
//
//	@Summary		Current session
//	@Description	Returns the signed-in principal, fresh from the store, and its dashboard path.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	gatewaysdk.SessionResponse
//	@Failure		401	{object}	gatewaysdk.APIError
//	@Security		BearerAuth
//	@Router			/v1/session [get].
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		gatewaysdk.ErrInvalidSession.WriteError(w)
		return
	}

	p, err := h.AuthService.Principal(r.Context(), claims)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := gatewaysdk.SessionResponse{
		Principal:     toPrincipal(p),
		SessionID:     claims.SID,
		DashboardPath: routing.LandingPath(p),
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// sessionPrincipal rebuilds the principal from the session claims, or nil
// for anonymous requests.
func sessionPrincipal(r *http.Request) *domain.Principal {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		return nil
	}
	p := service.PrincipalFromClaims(claims)
	return &p
}

// GuardHandler evaluates the page guard without rendering the page, for
// clients that route on their own.
type GuardHandler struct {
	Pages *routing.PageTable
}

// ServeHTTP answers whether the caller may open path.
//
//	@Summary		Evaluate page guard
//	@Description	Runs the page guard for path. Anonymous callers are sent to the page's login, callers whose role is not allowed to their own dashboard.
//	@Tags			Session
//	@Produce		json
//	@Param			path	query		string	true	"Page path, e.g. /dashboard/admin/units"
//	@Success		200		{object}	gatewaysdk.GuardResponse
//	@Failure		400		{object}	gatewaysdk.APIError
//	@Failure		404		{object}	gatewaysdk.APIError
//	@Router			/v1/guard [get].
func (h *GuardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		gatewaysdk.ErrValidation.WithFields(map[string]string{"path": "required"}).WriteError(w)
		return
	}

	pg, ok := h.Pages.Match(path)
	if !ok {
		gatewaysdk.ErrNotFound.WriteError(w)
		return
	}

	resp := gatewaysdk.GuardResponse{Path: path, Decision: gatewaysdk.DecisionAllow}
	if d := pg.Authorize(sessionPrincipal(r)); !d.Allow {
		resp.Decision = gatewaysdk.DecisionRedirect
		resp.Location = d.Location
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// PageHandler guards every dashboard page with the page table. Allowed
// requests get the page context; everything else is redirected before any
// page data is written.
type PageHandler struct {
	Pages *routing.PageTable
}

// ServeHTTP renders a guarded page.
//
//	@Summary		Dashboard page
//	@Description	Guarded dashboard and portal pages. Redirects with 303 when the caller may not see the page.
//	@Tags			Pages
//	@Produce		json
//	@Param			page	path		string	true	"Page below /dashboard"
//	@Success		200		{object}	gatewaysdk.PageResponse
//	@Success		303		"Redirect to login or the caller's own dashboard"
//	@Failure		404		{object}	gatewaysdk.APIError
//	@Router			/dashboard/{page} [get].
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pg, ok := h.Pages.Match(r.URL.Path)
	if !ok {
		gatewaysdk.ErrNotFound.WriteError(w)
		return
	}

	p := sessionPrincipal(r)
	d := pg.Authorize(p)
	if !d.Allow {
		l := slogx.FromContext(r.Context())
		if p != nil {
			l.Warn("page denied", "page", pg.Pattern, "role", p.Role.String(), "location", d.Location)
		} else {
			l.Info("anonymous page request", "page", pg.Pattern, "location", d.Location)
		}
		httpx.NoCache(w)
		http.Redirect(w, r, d.Location, http.StatusSeeOther)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.PageResponse{
		Page:      toPage(pg),
		Principal: toPrincipal(*p),
	})
}

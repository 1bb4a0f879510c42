package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/service"
	"github.com/aussiebroadwan/firegate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/firegate/pkg/httpx"
	"github.com/aussiebroadwan/firegate/pkg/slogx"
)

// AuthHandler serves login, password change and logout for every kind.
type AuthHandler struct {
	AuthService *service.AuthService
	Cookie      CookieConfig
}

// kindFromPath resolves {kind}, writing 404 when it is unknown.
func kindFromPath(w http.ResponseWriter, r *http.Request) (domain.Kind, bool) {
	kind, err := domain.ParseKind(r.PathValue("kind"))
	if err != nil {
		gatewaysdk.ErrUnknownKind.WriteError(w)
		return "", false
	}
	return kind, true
}

// HandleLogin authenticates a principal of the path's kind.
//
//	@Summary		Log in
//	@Description	Verifies credentials and opens a session. Personnel log in with their service number, every other kind with a username.
//	@Description	A provisional password answers 409 with a change token instead of a session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			kind	path		string					true	"Login kind"	Enums(superadmin, station-admin, personnel, general)
//	@Param			request	body		gatewaysdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	gatewaysdk.LoginResponse
//	@Failure		400		{object}	gatewaysdk.APIError
//	@Failure		401		{object}	gatewaysdk.APIError
//	@Failure		404		{object}	gatewaysdk.APIError
//	@Failure		409		{object}	gatewaysdk.PasswordChangeRequiredError	"Password change required"
//	@Router			/v1/auth/{kind}/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromPath(w, r)
	if !ok {
		return
	}

	var req gatewaysdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		gatewaysdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if errs := req.Validate(kind.String()); errs != nil {
		gatewaysdk.ErrValidation.WithFields(errs).WriteError(w)
		return
	}

	grant, err := h.AuthService.Login(r.Context(), kind, req.Login(kind.String()), req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeGrant(w, grant)
}

// HandleChangePassword completes a pending password change, or changes the
// password of the signed-in principal.
//
//	@Summary		Change password
//	@Description	With change_token completes the change a login demanded; without it the caller must be signed in and send old_password.
//	@Description	Every other session of the principal is revoked and a new one is opened.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			kind	path		string								true	"Login kind"	Enums(superadmin, station-admin, personnel, general)
//	@Param			request	body		gatewaysdk.ChangePasswordRequest	true	"Password change"
//	@Success		200		{object}	gatewaysdk.LoginResponse
//	@Failure		400		{object}	gatewaysdk.APIError
//	@Failure		401		{object}	gatewaysdk.APIError
//	@Failure		429		{object}	gatewaysdk.APIError
//	@Router			/v1/auth/{kind}/change-password [post].
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromPath(w, r)
	if !ok {
		return
	}

	var req gatewaysdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		gatewaysdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if errs := req.Validate(); errs != nil {
		gatewaysdk.ErrValidation.WithFields(errs).WriteError(w)
		return
	}

	in := service.ChangePasswordInput{
		PrincipalID: req.ID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
		ChangeToken: req.ChangeToken,
	}
	if claims, ok := httpx.ClaimsFromContext(r.Context()); ok {
		in.Caller = &claims
	}

	grant, err := h.AuthService.ChangePassword(r.Context(), kind, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeGrant(w, grant)
}

// HandleLogout revokes the current session and clears the cookie. It
// succeeds without a session so a stale cookie can always be dropped.
//
//	@Summary	Log out
//	@Tags		Auth
//	@Param		kind	path	string	true	"Login kind"	Enums(superadmin, station-admin, personnel, general)
//	@Success	204
//	@Security	BearerAuth
//	@Router		/v1/auth/{kind}/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if _, ok := kindFromPath(w, r); !ok {
		return
	}

	if claims, ok := httpx.ClaimsFromContext(r.Context()); ok {
		if err := h.AuthService.Logout(r.Context(), claims.SID); err != nil {
			writeError(w, r, err)
			return
		}
		slogx.FromContext(r.Context()).Info("logged out", slog.String("sid", claims.SID))
	}

	h.Cookie.clear(w)
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) writeGrant(w http.ResponseWriter, g service.Grant) {
	h.Cookie.set(w, g.Token, g.ExpiresAt)
	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.LoginResponse{
		Principal:    toPrincipal(g.Principal),
		RedirectTo:   g.RedirectTo,
		SessionToken: g.Token,
		ExpiresAt:    g.ExpiresAt,
	})
}

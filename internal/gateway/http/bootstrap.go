package http

import (
	"net/http"

	"github.com/aussiebroadwan/firegate/internal/gateway/service"
	"github.com/aussiebroadwan/firegate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/firegate/pkg/httpx"
	"github.com/aussiebroadwan/firegate/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the gateway
//	@Description	Creates the first SuperAdmin. Only available when a bootstrap token is configured and only until a SuperAdmin exists.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string							true	"Bootstrap token for authorization"
//	@Param			request				body		gatewaysdk.BootstrapRequest		true	"SuperAdmin account"
//	@Success		201					{object}	gatewaysdk.BootstrapResponse
//	@Failure		400					{object}	gatewaysdk.APIError	"Invalid request body or validation failed"
//	@Failure		401					{object}	gatewaysdk.APIError	"Missing or invalid bootstrap token"
//	@Failure		404					{object}	gatewaysdk.APIError	"Bootstrap not enabled (no token configured)"
//	@Failure		409					{object}	gatewaysdk.APIError	"Already bootstrapped"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())
	l.Info("Starting to bootstrap")

	// 1. Check if enabled
	if h.BootstrapService.Token == "" {
		errBootstrapDisabled.WriteError(w)
		return
	}

	// 2. Require bootstrap token header
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		errBootstrapToken.WriteError(w)
		return
	}

	// 3. Parse request body and validate
	var req gatewaysdk.BootstrapRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		gatewaysdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if errs := req.Validate(); errs != nil {
		gatewaysdk.ErrValidation.WithFields(errs).WriteError(w)
		return
	}

	// 4. Perform bootstrap
	p, err := h.BootstrapService.Bootstrap(r.Context(), token, req.Username, req.PreferredName, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, gatewaysdk.BootstrapResponse{Principal: toPrincipal(p)})
}

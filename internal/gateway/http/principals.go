package http

import (
	"net/http"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/service"
	"github.com/aussiebroadwan/firegate/internal/gateway/store"
	"github.com/aussiebroadwan/firegate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/firegate/pkg/httpx"
)

type PrincipalsHandler struct {
	PrincipalService *service.PrincipalService
}

// HandleCreate provisions a principal with a temporary password.
//
//	@Summary		Provision a principal
//	@Description	Creates a principal with a one-time temporary password. The first login with it demands a password change.
//	@Description	Station admins may only create personnel and civilians of their own station.
//	@Tags			Principals
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatewaysdk.ProvisionPrincipalRequest	true	"New principal"
//	@Success		201		{object}	gatewaysdk.ProvisionPrincipalResponse
//	@Failure		400		{object}	gatewaysdk.APIError
//	@Failure		401		{object}	gatewaysdk.APIError
//	@Failure		403		{object}	gatewaysdk.APIError
//	@Failure		409		{object}	gatewaysdk.APIError
//	@Security		BearerAuth
//	@Router			/v1/principals [post].
func (h *PrincipalsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller := sessionPrincipal(r)
	if caller == nil {
		gatewaysdk.ErrInvalidSession.WriteError(w)
		return
	}

	var req gatewaysdk.ProvisionPrincipalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		gatewaysdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if errs := req.Validate(); errs != nil {
		gatewaysdk.ErrValidation.WithFields(errs).WriteError(w)
		return
	}

	p, temp, err := h.PrincipalService.Provision(r.Context(), *caller, service.ProvisionInput{
		Kind:          domain.Kind(req.Kind),
		Role:          domain.Role(req.Role),
		Username:      req.Username,
		ServiceNumber: req.ServiceNumber,
		PreferredName: req.PreferredName,
		StationID:     req.StationID,
		DepartmentID:  req.DepartmentID,
		UnitID:        req.UnitID,
		SubRole:       req.SubRole,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, gatewaysdk.ProvisionPrincipalResponse{
		Principal:         toPrincipal(p),
		TemporaryPassword: temp,
	})
}

// HandleList lists principals visible to the caller.
//
//	@Summary	List principals
//	@Tags		Principals
//	@Produce	json
//	@Param		kind		query		string	false	"Filter by kind"
//	@Param		role		query		string	false	"Filter by role"
//	@Param		station_id	query		string	false	"Filter by station (ignored for station admins)"
//	@Success	200			{object}	gatewaysdk.PrincipalsResponse
//	@Failure	400			{object}	gatewaysdk.APIError
//	@Failure	403			{object}	gatewaysdk.APIError
//	@Security	BearerAuth
//	@Router		/v1/principals [get].
func (h *PrincipalsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller := sessionPrincipal(r)
	if caller == nil {
		gatewaysdk.ErrInvalidSession.WriteError(w)
		return
	}

	q := r.URL.Query()
	f := store.PrincipalFilter{StationID: q.Get("station_id")}
	if v := q.Get("kind"); v != "" {
		kind, err := domain.ParseKind(v)
		if err != nil {
			gatewaysdk.ErrValidation.WithFields(map[string]string{"kind": "unknown kind"}).WriteError(w)
			return
		}
		f.Kind = kind
	}
	if v := q.Get("role"); v != "" {
		role, err := domain.ParseRole(v)
		if err != nil {
			gatewaysdk.ErrValidation.WithFields(map[string]string{"role": "unknown role"}).WriteError(w)
			return
		}
		f.Role = role
	}

	ps, err := h.PrincipalService.List(r.Context(), *caller, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.PrincipalsResponse{Principals: toPrincipals(ps)})
}

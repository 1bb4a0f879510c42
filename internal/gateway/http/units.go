package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/firegate/internal/gateway/service"
	"github.com/aussiebroadwan/firegate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/firegate/pkg/httpx"
)

type UnitsHandler struct {
	UnitService *service.UnitService
}

// HandleList lists units of the caller's station, or any station for a
// SuperAdmin.
//
//	@Summary	List units
//	@Tags		Units
//	@Produce	json
//	@Param		station_id	query		string	false	"Station filter (SuperAdmin only)"
//	@Success	200			{object}	gatewaysdk.UnitsResponse
//	@Failure	401			{object}	gatewaysdk.APIError
//	@Failure	403			{object}	gatewaysdk.APIError
//	@Security	BearerAuth
//	@Router		/v1/units [get].
func (h *UnitsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller := sessionPrincipal(r)
	if caller == nil {
		gatewaysdk.ErrInvalidSession.WriteError(w)
		return
	}

	units, err := h.UnitService.List(r.Context(), *caller, r.URL.Query().Get("station_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := gatewaysdk.UnitsResponse{Units: make([]gatewaysdk.Unit, 0, len(units))}
	for _, u := range units {
		resp.Units = append(resp.Units, toUnit(u))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleSetActive returns the handler for /activate or /deactivate.
//
//	@Summary	Activate or deactivate a unit
//	@Tags		Units
//	@Produce	json
//	@Param		id	path		string	true	"Unit id"
//	@Success	200	{object}	gatewaysdk.Unit
//	@Failure	403	{object}	gatewaysdk.APIError
//	@Failure	404	{object}	gatewaysdk.APIError
//	@Security	BearerAuth
//	@Router		/v1/units/{id}/activate [post]
//	@Router		/v1/units/{id}/deactivate [post].
func (h *UnitsHandler) HandleSetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := sessionPrincipal(r)
		if caller == nil {
			gatewaysdk.ErrInvalidSession.WriteError(w)
			return
		}

		u, err := h.UnitService.SetActive(r.Context(), *caller, r.PathValue("id"), active)
		if err != nil {
			if errors.Is(err, service.ErrUnknownUnit) {
				gatewaysdk.ErrNotFound.WriteError(w)
				return
			}
			writeError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toUnit(u))
	}
}

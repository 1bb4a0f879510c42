package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/firegate/internal/gateway/service"
	"github.com/aussiebroadwan/firegate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/firegate/pkg/slogx"
)

var (
	errBootstrapToken = gatewaysdk.NewAPIError(http.StatusUnauthorized,
		gatewaysdk.ErrorCodeInvalidCredentials, "missing or invalid bootstrap token")
	errBootstrapDisabled = gatewaysdk.NewAPIError(http.StatusNotFound,
		gatewaysdk.ErrorCodeNotFound, "bootstrap endpoint is not enabled")
)

// writeError maps a service error onto the API error catalogue. Anything
// unrecognised is logged and reported as a server error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var pcr *gatewaysdk.PasswordChangeRequiredError
	if errors.As(err, &pcr) {
		pcr.WriteError(w)
		return
	}
	apiErrorFor(r, err).WriteError(w)
}

func apiErrorFor(r *http.Request, err error) *gatewaysdk.APIError {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return gatewaysdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrInvalidChangeToken):
		return gatewaysdk.ErrInvalidChangeToken
	case errors.Is(err, service.ErrTooManyAttempts):
		return gatewaysdk.ErrTooManyAttempts
	case errors.Is(err, service.ErrInvalidSession):
		return gatewaysdk.ErrInvalidSession
	case errors.Is(err, service.ErrForbidden):
		return gatewaysdk.ErrInsufficientRole
	case errors.Is(err, service.ErrPrincipalExists):
		return gatewaysdk.ErrConflict
	case errors.Is(err, service.ErrPasswordReused):
		return gatewaysdk.ErrValidation.WithFields(map[string]string{
			"new_password": "must differ from the current password",
		})
	case errors.Is(err, service.ErrRoleKindMismatch):
		return gatewaysdk.ErrValidation.WithFields(map[string]string{
			"role": "cannot log in with this kind",
		})
	case errors.Is(err, service.ErrUnknownStation):
		return gatewaysdk.ErrValidation.WithFields(map[string]string{
			"station_id": "unknown station",
		})
	case errors.Is(err, service.ErrUnknownUnit):
		return gatewaysdk.ErrValidation.WithFields(map[string]string{
			"unit_id": "unknown unit or unit of another station",
		})
	case errors.Is(err, service.ErrBootstrapAlready):
		return gatewaysdk.ErrAlreadyBootstrapped
	case errors.Is(err, service.ErrBootstrapUnauthorized):
		return errBootstrapToken
	case errors.Is(err, service.ErrBootstrapDisabled):
		return errBootstrapDisabled
	}

	slogx.FromContext(r.Context()).Error("request failed", slog.Any("err", err))
	return gatewaysdk.ErrServerError
}

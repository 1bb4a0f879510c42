package service

import (
	"errors"

	"github.com/aussiebroadwan/firegate/pkg/gatewaysdk"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidChangeToken = errors.New("invalid_change_token")
	ErrTooManyAttempts    = errors.New("too_many_attempts")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrPasswordReused     = errors.New("password_reused")
	ErrForbidden          = errors.New("forbidden")
	ErrRoleKindMismatch   = errors.New("role_kind_mismatch")
	ErrPrincipalExists    = errors.New("principal_exists")
	ErrUnknownStation     = errors.New("unknown_station")
	ErrUnknownUnit        = errors.New("unknown_unit")
)

// PasswordChangeRequiredError carries the change token of a login whose
// password is provisional. It is the SDK type so handlers can write it as is.
type PasswordChangeRequiredError = gatewaysdk.PasswordChangeRequiredError

// ErrPasswordChangeRequired matches any *PasswordChangeRequiredError.
var ErrPasswordChangeRequired = gatewaysdk.ErrPasswordChangeRequired

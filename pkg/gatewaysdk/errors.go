package gatewaysdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/firegate/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeValidation             = "validation_error"
	ErrorCodeInvalidCredentials     = "invalid_credentials"
	ErrorCodeInvalidSession         = "invalid_session"
	ErrorCodeInsufficientRole       = "insufficient_role"
	ErrorCodePasswordChangeRequired = "password_change_required"
	ErrorCodeInvalidChangeToken     = "invalid_change_token"
	ErrorCodeTooManyAttempts        = "too_many_attempts"
	ErrorCodeUnknownKind            = "unknown_kind"
	ErrorCodeNotFound               = "not_found"
	ErrorCodeConflict               = "conflict"
	ErrorCodeRateLimited            = "rate_limit_exceeded"
	ErrorCodeAlreadyBootstrapped    = "already_bootstrapped"
	ErrorCodeServerError            = "server_error"
)

// ============================================================================
// APIError - the wire error
// ============================================================================

// APIError is the JSON error body every firegate endpoint writes. It is used
// by the server to write responses and by the client to represent them.
type APIError struct {
	StatusCode  int               `json:"-"`
	Code        string            `json:"error"`
	Description string            `json:"error_description"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches catalogue entries by code so a decoded response compares equal
// to the predefined value.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WriteError writes the error as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

// WithFields returns a copy carrying per-field messages.
func (e *APIError) WithFields(fields map[string]string) *APIError {
	cp := *e
	cp.Fields = fields
	return &cp
}

// NewAPIError builds an ad-hoc catalogue entry.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Description: description}
}

// ============================================================================
// Catalogue
// ============================================================================

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrValidation = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeValidation,
		Description: "one or more fields are invalid",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid credentials",
	}

	ErrInvalidSession = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidSession,
		Description: "the session is missing, expired or revoked",
	}

	ErrInsufficientRole = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeInsufficientRole,
		Description: "the principal's role does not permit this action",
	}

	ErrInvalidChangeToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidChangeToken,
		Description: "the password change token is invalid or expired",
	}

	ErrTooManyAttempts = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeTooManyAttempts,
		Description: "too many failed attempts, log in again",
	}

	ErrUnknownKind = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeUnknownKind,
		Description: "unknown login kind",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "resource not found",
	}

	ErrConflict = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeConflict,
		Description: "resource already exists",
	}

	ErrAlreadyBootstrapped = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeAlreadyBootstrapped,
		Description: "a superadmin already exists",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// ============================================================================
// Password change required
// ============================================================================

// ErrPasswordChangeRequired matches any *PasswordChangeRequiredError via
// errors.Is.
var ErrPasswordChangeRequired = errors.New("password change required")

// PasswordChangeRequiredError is returned by a login whose credentials were
// correct but whose password is provisional. It travels as 409 Conflict.
type PasswordChangeRequiredError struct {
	PrincipalID string `json:"principal_id"`
	ChangeToken string `json:"change_token"`
}

func (e *PasswordChangeRequiredError) Error() string {
	return "password change required for principal " + e.PrincipalID
}

func (e *PasswordChangeRequiredError) Is(target error) bool {
	return target == ErrPasswordChangeRequired
}

// WriteError writes the 409 body the login flow keys on.
func (e *PasswordChangeRequiredError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	_ = json.NewEncoder(w).Encode(passwordChangeRequiredBody{
		Error:                 ErrorCodePasswordChangeRequired,
		ErrorDescription:      "the password must be changed before a session is issued",
		RequiresPasswordReset: true,
		PrincipalID:           e.PrincipalID,
		ChangeToken:           e.ChangeToken,
	})
}

type passwordChangeRequiredBody struct {
	Error                 string `json:"error"`
	ErrorDescription      string `json:"error_description"`
	RequiresPasswordReset bool   `json:"requires_password_reset"`
	PrincipalID           string `json:"principal_id"`
	ChangeToken           string `json:"change_token"`
}

// ============================================================================
// Client-side taxonomy
// ============================================================================

// ValidationError reports fields rejected before or by the server.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range sortedKeys(e.Fields) {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AuthError covers rejected credentials, dead sessions and other refusals
// the server answered with a catalogue error.
type AuthError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *AuthError) Error() string {
	return e.Code + ": " + e.Message
}

// Is lets callers compare against catalogue entries.
func (e *AuthError) Is(target error) bool {
	var t *APIError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// NetworkError wraps a transport failure, no response was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// Message renders err as the single line a login screen shows.
func Message(err error) string {
	var (
		ve *ValidationError
		ae *AuthError
		ne *NetworkError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &ae):
		return ae.Message
	case errors.As(err, &ne):
		return "could not reach the server, check your connection"
	default:
		return err.Error()
	}
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse maps a non-2xx response onto the client taxonomy.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusConflict {
		var pc passwordChangeRequiredBody
		if err := json.Unmarshal(body, &pc); err == nil && pc.RequiresPasswordReset {
			return &PasswordChangeRequiredError{
				PrincipalID: pc.PrincipalID,
				ChangeToken: pc.ChangeToken,
			}
		}
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		if len(apiErr.Fields) > 0 {
			return &ValidationError{Fields: apiErr.Fields}
		}
		return &AuthError{
			StatusCode: resp.StatusCode,
			Code:       apiErr.Code,
			Message:    apiErr.Description,
		}
	}

	return &AuthError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

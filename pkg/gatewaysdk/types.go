package gatewaysdk

import (
	"strings"
	"time"
)

// Login kinds as they appear in /v1/auth/{kind}/... paths.
const (
	KindSuperAdmin   = "superadmin"
	KindStationAdmin = "station-admin"
	KindPersonnel    = "personnel"
	KindGeneral      = "general"
)

// ============================================================================
// Principal
// ============================================================================

// Principal is the public view of an authenticated actor. Password material
// never leaves the server.
type Principal struct {
	ID                 string `json:"id"`
	Kind               string `json:"kind"`
	Username           string `json:"username,omitempty"`
	ServiceNumber      string `json:"service_number,omitempty"`
	PreferredName      string `json:"preferred_name,omitempty"`
	Role               string `json:"role"`
	StationID          string `json:"station_id,omitempty"`
	DepartmentID       string `json:"department_id,omitempty"`
	UnitID             string `json:"unit_id,omitempty"`
	SubRole            string `json:"sub_role,omitempty"`
	MustChangePassword bool   `json:"must_change_password,omitempty"`
}

// ============================================================================
// Login / password change
// ============================================================================

// LoginRequest is the body of POST /v1/auth/{kind}/login. Personnel log in
// with their service number, every other kind with a username.
type LoginRequest struct {
	Username      string `json:"username,omitempty" validate:"omitempty,max=64"`
	ServiceNumber string `json:"service_number,omitempty" validate:"omitempty,max=32"`
	Password      string `json:"password" validate:"required,max=256"`
}

// Login returns the identifier relevant for kind.
func (r LoginRequest) Login(kind string) string {
	if kind == KindPersonnel {
		return strings.TrimSpace(r.ServiceNumber)
	}
	return strings.TrimSpace(r.Username)
}

// Validate checks the request for kind. Returns nil when valid.
func (r LoginRequest) Validate(kind string) map[string]string {
	errs := fieldErrors(r)
	if r.Login(kind) == "" {
		if kind == KindPersonnel {
			errs["service_number"] = "required"
		} else {
			errs["username"] = "required"
		}
	}
	return orNil(errs)
}

// LoginResponse is returned when a session was issued.
type LoginResponse struct {
	Principal    Principal `json:"principal"`
	RedirectTo   string    `json:"redirect_to"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ChangePasswordRequest is the body of POST /v1/auth/{kind}/change-password.
// A pending change is completed with ChangeToken; a voluntary change of a
// signed-in principal omits it and must send OldPassword.
type ChangePasswordRequest struct {
	ID          string  `json:"id" validate:"required,max=64"`
	OldPassword *string `json:"old_password"`
	NewPassword string  `json:"new_password" validate:"required,min=8,max=256"`
	ChangeToken string  `json:"change_token,omitempty" validate:"omitempty,max=128"`
}

// Validate returns nil when the request is well formed.
func (r ChangePasswordRequest) Validate() map[string]string {
	errs := fieldErrors(r)
	if r.ChangeToken == "" && r.OldPassword == nil {
		errs["old_password"] = "required without change_token"
	}
	if r.OldPassword != nil && *r.OldPassword != "" && *r.OldPassword == r.NewPassword {
		errs["new_password"] = "must differ from the old password"
	}
	return orNil(errs)
}

// ============================================================================
// Session / guard / pages
// ============================================================================

type SessionResponse struct {
	Principal     Principal `json:"principal"`
	SessionID     string    `json:"session_id"`
	ExpiresAt     time.Time `json:"expires_at"`
	DashboardPath string    `json:"dashboard_path"`
}

const (
	DecisionAllow    = "allow"
	DecisionRedirect = "redirect"
)

// GuardResponse answers GET /v1/guard.
type GuardResponse struct {
	Path     string `json:"path"`
	Decision string `json:"decision"`
	Location string `json:"location,omitempty"`
}

// Page describes one guarded dashboard page.
type Page struct {
	Pattern      string   `json:"pattern"`
	Title        string   `json:"title"`
	Kind         string   `json:"kind"`
	AllowedRoles []string `json:"allowed_roles"`
}

// PageResponse is the context rendered for an allowed page.
type PageResponse struct {
	Page      Page      `json:"page"`
	Principal Principal `json:"principal"`
}

// ============================================================================
// Bootstrap / provisioning
// ============================================================================

// BootstrapRequest creates the first SuperAdmin.
type BootstrapRequest struct {
	Username      string `json:"username" validate:"required,min=3,max=32,loginname"`
	PreferredName string `json:"preferred_name" validate:"required,max=64"`
	Password      string `json:"password" validate:"required,min=12,max=256"`
}

func (r BootstrapRequest) Validate() map[string]string {
	return orNil(fieldErrors(r))
}

type BootstrapResponse struct {
	Principal Principal `json:"principal"`
}

// ProvisionPrincipalRequest is the body of POST /v1/principals.
type ProvisionPrincipalRequest struct {
	Kind          string `json:"kind" validate:"required,oneof=superadmin station-admin personnel general"`
	Username      string `json:"username,omitempty" validate:"omitempty,min=3,max=32,loginname"`
	ServiceNumber string `json:"service_number,omitempty" validate:"omitempty,max=32,loginname"`
	PreferredName string `json:"preferred_name" validate:"required,max=64"`
	Role          string `json:"role" validate:"required,oneof=SuperAdmin Admin StationAdmin Operations FirePersonnel Civilian"`
	StationID     string `json:"station_id,omitempty" validate:"omitempty,max=64"`
	DepartmentID  string `json:"department_id,omitempty" validate:"omitempty,max=64"`
	UnitID        string `json:"unit_id,omitempty" validate:"omitempty,max=64"`
	SubRole       string `json:"sub_role,omitempty" validate:"omitempty,max=64"`
}

func (r ProvisionPrincipalRequest) Validate() map[string]string {
	errs := fieldErrors(r)
	login := LoginRequest{Username: r.Username, ServiceNumber: r.ServiceNumber}
	if login.Login(r.Kind) == "" {
		if r.Kind == KindPersonnel {
			errs["service_number"] = "required"
		} else {
			errs["username"] = "required"
		}
	}
	return orNil(errs)
}

// ProvisionPrincipalResponse carries the one-time provisional password.
type ProvisionPrincipalResponse struct {
	Principal         Principal `json:"principal"`
	TemporaryPassword string    `json:"temporary_password"`
}

type PrincipalsResponse struct {
	Principals []Principal `json:"principals"`
}

// ============================================================================
// Units
// ============================================================================

// Unit is an appliance crew. Active is null while the roster never said.
type Unit struct {
	ID           string `json:"id"`
	Callsign     string `json:"callsign"`
	StationID    string `json:"station_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	Active       *bool  `json:"active"`
}

type UnitsResponse struct {
	Units []Unit `json:"units"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime,omitempty"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Package routing decides where a principal lands after login and whether a
// principal may see a page. Everything here is pure.
package routing

import "github.com/aussiebroadwan/firegate/internal/gateway/domain"

// Dashboard landing paths.
const (
	PathSuperAdmin = "/dashboard/superadmin"
	PathAdmin      = "/dashboard/admin"
	PathOperations = "/dashboard/operations"
	PathUnit       = "/dashboard/unit"
	PathPortal     = "/portal"
	PathFallback   = "/"
)

// ResolveDashboardPath maps a role to its dashboard. Unknown roles get the
// fallback path.
func ResolveDashboardPath(r domain.Role) string {
	switch r.Canonical() {
	case domain.RoleSuperAdmin:
		return PathSuperAdmin
	case domain.RoleAdmin:
		return PathAdmin
	case domain.RoleOperations:
		return PathOperations
	case domain.RoleFirePersonnel:
		return PathUnit
	case domain.RoleCivilian:
		return PathPortal
	}
	return PathFallback
}

// LandingPath is where a principal is sent right after login. Fire
// personnel not yet attached to a unit have no unit dashboard to see and land
// on operations instead.
func LandingPath(p domain.Principal) string {
	if p.Role == domain.RoleFirePersonnel && !p.HasUnit() {
		return PathOperations
	}
	return ResolveDashboardPath(p.Role)
}

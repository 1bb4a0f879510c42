package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownRole = errors.New("domain: unknown role")

// Role is the closed set of principal roles.
type Role string

const (
	RoleSuperAdmin    Role = "SuperAdmin"
	RoleAdmin         Role = "Admin"
	RoleStationAdmin  Role = "StationAdmin" // alias of RoleAdmin
	RoleOperations    Role = "Operations"
	RoleFirePersonnel Role = "FirePersonnel"
	RoleCivilian      Role = "Civilian"
)

// Roles lists every role, aliases included.
func Roles() []Role {
	return []Role{
		RoleSuperAdmin,
		RoleAdmin,
		RoleStationAdmin,
		RoleOperations,
		RoleFirePersonnel,
		RoleCivilian,
	}
}

// ParseRole converts a stored or submitted role name to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Valid reports whether r belongs to the closed enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleStationAdmin, RoleOperations, RoleFirePersonnel, RoleCivilian:
		return true
	}
	return false
}

// Canonical folds aliases onto a single role.
func (r Role) Canonical() Role {
	if r == RoleStationAdmin {
		return RoleAdmin
	}
	return r
}

// Is reports whether r and other are the same role once aliases are folded.
func (r Role) Is(other Role) bool {
	return r.Canonical() == other.Canonical()
}

func (r Role) String() string { return string(r) }

package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownKind = errors.New("domain: unknown actor kind")

// Kind is the auth domain a principal logs in through. Each kind has its own
// login page and accepts a fixed subset of roles.
type Kind string

const (
	KindSuperAdmin   Kind = "superadmin"
	KindStationAdmin Kind = "station-admin"
	KindPersonnel    Kind = "personnel"
	KindGeneral      Kind = "general"
)

// Kinds lists every actor kind.
func Kinds() []Kind {
	return []Kind{KindSuperAdmin, KindStationAdmin, KindPersonnel, KindGeneral}
}

// ParseKind converts a path segment to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	switch k {
	case KindSuperAdmin, KindStationAdmin, KindPersonnel, KindGeneral:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// LoginPath is the login page anonymous visitors of this kind's pages are
// sent to.
func (k Kind) LoginPath() string {
	switch k {
	case KindSuperAdmin:
		return "/login/superadmin"
	case KindStationAdmin:
		return "/login/station-admin"
	case KindPersonnel:
		return "/login/personnel"
	default:
		return "/login"
	}
}

// UsesServiceNumber reports whether principals of this kind log in with a
// service number instead of a username.
func (k Kind) UsesServiceNumber() bool {
	return k == KindPersonnel
}

// Accepts reports whether a principal with role r may log in through k.
func (k Kind) Accepts(r Role) bool {
	switch k {
	case KindSuperAdmin:
		return r == RoleSuperAdmin
	case KindStationAdmin:
		return r.Is(RoleAdmin)
	case KindPersonnel:
		return r == RoleFirePersonnel || r == RoleOperations
	case KindGeneral:
		return r == RoleCivilian
	}
	return false
}

// KindForRole returns the kind a role logs in through.
func KindForRole(r Role) (Kind, error) {
	for _, k := range Kinds() {
		if k.Accepts(r) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, r)
}

func (k Kind) String() string { return string(k) }

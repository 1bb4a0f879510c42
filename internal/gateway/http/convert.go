package http

import (
	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/routing"
	"github.com/aussiebroadwan/firegate/pkg/gatewaysdk"
)

func toPrincipal(p domain.Principal) gatewaysdk.Principal {
	return gatewaysdk.Principal{
		ID:                 p.ID,
		Kind:               p.Kind.String(),
		Username:           p.Username,
		ServiceNumber:      p.ServiceNumber,
		PreferredName:      p.PreferredName,
		Role:               p.Role.String(),
		StationID:          p.StationID,
		DepartmentID:       p.DepartmentID,
		UnitID:             p.UnitID,
		SubRole:            p.SubRole,
		MustChangePassword: p.MustChangePassword,
	}
}

func toPrincipals(ps []domain.Principal) []gatewaysdk.Principal {
	out := make([]gatewaysdk.Principal, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPrincipal(p))
	}
	return out
}

func toUnit(u domain.Unit) gatewaysdk.Unit {
	out := gatewaysdk.Unit{
		ID:           u.ID,
		Callsign:     u.Callsign,
		StationID:    u.StationID,
		DepartmentID: u.DepartmentID,
	}
	if active, known := u.Active.Bool(); known {
		out.Active = &active
	}
	return out
}

func toPage(pg routing.Page) gatewaysdk.Page {
	roles := make([]string, 0, len(pg.Allowed))
	for _, r := range pg.Allowed {
		roles = append(roles, r.String())
	}
	return gatewaysdk.Page{
		Pattern:      pg.Pattern,
		Title:        pg.Title,
		Kind:         pg.Kind.String(),
		AllowedRoles: roles,
	}
}

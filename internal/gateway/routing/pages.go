package routing

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
)

var ErrInvalidPage = errors.New("routing: invalid page")

// Page is a guarded dashboard page. Kind picks the login page anonymous
// visitors are redirected to.
type Page struct {
	Pattern string
	Title   string
	Kind    domain.Kind
	Allowed []domain.Role
}

// Authorize checks p against the page's allow-list.
func (pg Page) Authorize(p *domain.Principal) Decision {
	return authorize(p, pg.Allowed, pg.Kind.LoginPath())
}

// matches reports whether path is the page itself or below it.
func (pg Page) matches(path string) bool {
	if path == pg.Pattern {
		return true
	}
	return strings.HasPrefix(path, pg.Pattern+"/")
}

// PageTable resolves a request path to the most specific page.
type PageTable struct {
	pages []Page
}

// NewPageTable validates the pages and orders them most specific first.
func NewPageTable(pages []Page) (*PageTable, error) {
	seen := make(map[string]struct{}, len(pages))
	for _, pg := range pages {
		switch {
		case !strings.HasPrefix(pg.Pattern, "/") || (len(pg.Pattern) > 1 && strings.HasSuffix(pg.Pattern, "/")):
			return nil, fmt.Errorf("%w: pattern %q", ErrInvalidPage, pg.Pattern)
		case len(pg.Allowed) == 0:
			return nil, fmt.Errorf("%w: %s has no allowed roles", ErrInvalidPage, pg.Pattern)
		}
		if _, err := domain.ParseKind(string(pg.Kind)); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPage, pg.Pattern, err)
		}
		for _, r := range pg.Allowed {
			if !r.Valid() {
				return nil, fmt.Errorf("%w: %s allows unknown role %q", ErrInvalidPage, pg.Pattern, r)
			}
		}
		if _, dup := seen[pg.Pattern]; dup {
			return nil, fmt.Errorf("%w: duplicate pattern %q", ErrInvalidPage, pg.Pattern)
		}
		seen[pg.Pattern] = struct{}{}
	}

	sorted := slices.Clone(pages)
	slices.SortStableFunc(sorted, func(a, b Page) int {
		return len(b.Pattern) - len(a.Pattern)
	})
	return &PageTable{pages: sorted}, nil
}

// MustPageTable is NewPageTable for static tables.
func MustPageTable(pages []Page) *PageTable {
	t, err := NewPageTable(pages)
	if err != nil {
		panic(err)
	}
	return t
}

// Match returns the most specific page covering path.
func (t *PageTable) Match(path string) (Page, bool) {
	for _, pg := range t.pages {
		if pg.matches(path) {
			return pg, true
		}
	}
	return Page{}, false
}

// Pages returns the pages, most specific first.
func (t *PageTable) Pages() []Page {
	return slices.Clone(t.pages)
}

var (
	superAdminOnly = []domain.Role{domain.RoleSuperAdmin}
	stationAdmins  = []domain.Role{domain.RoleAdmin, domain.RoleStationAdmin}
	operations     = []domain.Role{domain.RoleOperations, domain.RoleFirePersonnel}
	unitCrew       = []domain.Role{domain.RoleFirePersonnel}
	civilians      = []domain.Role{domain.RoleCivilian}
)

// DefaultPages is the dashboard's page table.
var DefaultPages = MustPageTable([]Page{
	{Pattern: PathSuperAdmin, Title: "Overview", Kind: domain.KindSuperAdmin, Allowed: superAdminOnly},
	{Pattern: PathSuperAdmin + "/departments", Title: "Departments", Kind: domain.KindSuperAdmin, Allowed: superAdminOnly},
	{Pattern: PathSuperAdmin + "/stations", Title: "Stations", Kind: domain.KindSuperAdmin, Allowed: superAdminOnly},
	{Pattern: PathSuperAdmin + "/roles", Title: "Roles", Kind: domain.KindSuperAdmin, Allowed: superAdminOnly},
	{Pattern: PathSuperAdmin + "/audit-logs", Title: "Audit logs", Kind: domain.KindSuperAdmin, Allowed: superAdminOnly},
	{Pattern: PathSuperAdmin + "/analytics", Title: "Analytics", Kind: domain.KindSuperAdmin, Allowed: superAdminOnly},

	{Pattern: PathAdmin, Title: "Station overview", Kind: domain.KindStationAdmin, Allowed: stationAdmins},
	{Pattern: PathAdmin + "/personnel", Title: "Personnel", Kind: domain.KindStationAdmin, Allowed: stationAdmins},
	{Pattern: PathAdmin + "/sub-divisions", Title: "Sub-divisions", Kind: domain.KindStationAdmin, Allowed: stationAdmins},
	{Pattern: PathAdmin + "/units", Title: "Units", Kind: domain.KindStationAdmin, Allowed: stationAdmins},
	{Pattern: PathAdmin + "/equipment", Title: "Equipment", Kind: domain.KindStationAdmin, Allowed: stationAdmins},

	{Pattern: PathOperations, Title: "Operations", Kind: domain.KindPersonnel, Allowed: operations},
	{Pattern: PathOperations + "/emergency-calls", Title: "Emergency calls", Kind: domain.KindPersonnel, Allowed: operations},

	{Pattern: PathUnit, Title: "Unit", Kind: domain.KindPersonnel, Allowed: unitCrew},
	{Pattern: PathUnit + "/equipment", Title: "Unit equipment", Kind: domain.KindPersonnel, Allowed: unitCrew},

	{Pattern: PathPortal, Title: "Portal", Kind: domain.KindGeneral, Allowed: civilians},
})

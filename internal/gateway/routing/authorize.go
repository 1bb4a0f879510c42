package routing

import (
	"slices"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
)

// DefaultLoginPath is used when no page kind is known.
const DefaultLoginPath = "/login"

// Decision is the outcome of an authorization check.
type Decision struct {
	Allow    bool
	Location string // set when Allow is false
}

// Allow is the decision letting the request through.
func Allow() Decision { return Decision{Allow: true} }

// Redirect is the decision sending the request to path.
func Redirect(path string) Decision { return Decision{Location: path} }

// Authorize gates a page on the principal's role. A nil principal is sent to
// the default login page.
func Authorize(p *domain.Principal, allowed []domain.Role) Decision {
	return authorize(p, allowed, DefaultLoginPath)
}

func authorize(p *domain.Principal, allowed []domain.Role, loginPath string) Decision {
	if p == nil {
		return Redirect(loginPath)
	}
	if roleAllowed(p.Role, allowed) {
		return Allow()
	}
	return Redirect(ResolveDashboardPath(p.Role))
}

// roleAllowed fails closed: a role outside the enumeration is never allowed,
// even when an allow-list names it.
func roleAllowed(r domain.Role, allowed []domain.Role) bool {
	if !r.Valid() {
		return false
	}
	return slices.ContainsFunc(allowed, r.Is)
}

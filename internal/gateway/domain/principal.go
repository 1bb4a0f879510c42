package domain

import "time"

// Principal is an actor that can hold a dashboard session.
type Principal struct {
	ID            string
	Kind          Kind
	Username      string // set for every kind except personnel
	ServiceNumber string // set for personnel
	PreferredName string
	Role          Role
	StationID     string
	DepartmentID  string
	UnitID        string
	SubRole       string

	PasswordHash string // argon2 encoded

	// MustChangePassword is set while the principal still holds a
	// provisional password.
	MustChangePassword bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LoginName is the identifier the principal types on the login page.
func (p Principal) LoginName() string {
	if p.Kind.UsesServiceNumber() {
		return p.ServiceNumber
	}
	return p.Username
}

// HasUnit reports whether the principal is attached to a unit.
func (p Principal) HasUnit() bool { return p.UnitID != "" }

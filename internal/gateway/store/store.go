package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories so a Tx-scoped store cannot open another Tx.
type Store interface {
	Principals() Principals
	Sessions() Sessions
	PasswordChanges() PasswordChanges
	Organisation() Organisation
	Units() Units

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// PrincipalFilter narrows ListPrincipals. Zero fields match everything.
type PrincipalFilter struct {
	Kind      domain.Kind
	Role      domain.Role
	StationID string
}

type Principals interface {
	GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error)

	// GetPrincipalByLogin looks a principal up by the name it logs in with
	// (username, or service number for personnel) within one kind.
	GetPrincipalByLogin(ctx context.Context, kind domain.Kind, login string) (domain.Principal, error)

	// CreatePrincipal inserts a principal. Returns ErrAlreadyExists when the
	// login name is taken within the kind.
	CreatePrincipal(ctx context.Context, p domain.Principal) error

	// UpdatePassword stores a new hash and the provisional flag.
	UpdatePassword(ctx context.Context, id, hash string, mustChange bool) error

	// SetPrincipalUnit attaches (or with "" detaches) a unit.
	SetPrincipalUnit(ctx context.Context, id, unitID string) error

	ListPrincipals(ctx context.Context, f PrincipalFilter) ([]domain.Principal, error)

	// CountByRole counts principals holding role.
	CountByRole(ctx context.Context, role domain.Role) (int, error)
}

// Sessions is the session registry consulted on every authenticated request.
type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error

	// SessionActive reports whether sid exists, is unrevoked and unexpired.
	SessionActive(ctx context.Context, sid string) (bool, error)

	RevokeSession(ctx context.Context, sid string) error

	// RevokePrincipalSessions revokes every session of a principal, used
	// after a password change.
	RevokePrincipalSessions(ctx context.Context, principalID string) error

	// DeleteExpiredSessions is housekeeping; returns the rows removed.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type PasswordChanges interface {
	CreatePasswordChange(ctx context.Context, pc domain.PasswordChange) error

	// GetPasswordChange returns an unexpired pending change by token hash.
	GetPasswordChange(ctx context.Context, tokenHash string, now time.Time) (domain.PasswordChange, error)

	// IncrementPasswordChangeAttempts bumps the failed attempt counter and
	// returns the updated record.
	IncrementPasswordChangeAttempts(ctx context.Context, tokenHash string) (domain.PasswordChange, error)

	DeletePasswordChange(ctx context.Context, tokenHash string) error

	// DeletePrincipalPasswordChanges drops every pending change of a
	// principal so only the newest change token is usable.
	DeletePrincipalPasswordChanges(ctx context.Context, principalID string) error

	DeleteExpiredPasswordChanges(ctx context.Context, now time.Time) (int64, error)
}

// Organisation holds departments and stations.
type Organisation interface {
	UpsertDepartment(ctx context.Context, d domain.Department) error
	UpsertStation(ctx context.Context, s domain.Station) error
	GetStation(ctx context.Context, id string) (domain.Station, error)
	ListDepartments(ctx context.Context) ([]domain.Department, error)
	ListStations(ctx context.Context, departmentID string) ([]domain.Station, error)
}

type Units interface {
	GetUnit(ctx context.Context, id string) (domain.Unit, error)

	// UpsertUnit inserts or updates a unit. An unknown Active flag never
	// overwrites a known one.
	UpsertUnit(ctx context.Context, u domain.Unit) error

	// ListUnits lists units, optionally restricted to one station.
	ListUnits(ctx context.Context, stationID string) ([]domain.Unit, error)

	SetUnitActive(ctx context.Context, id string, active bool) error
}

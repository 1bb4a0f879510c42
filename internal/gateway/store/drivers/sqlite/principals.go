package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/store"
)

type principalsRepo struct {
	q querier
}

const principalColumns = `id, kind, username, service_number, preferred_name, role,
	station_id, department_id, unit_id, sub_role, password_hash, must_change_password,
	created_at, updated_at`

func scanPrincipal(row interface{ Scan(...any) error }) (domain.Principal, error) {
	var (
		p                                        domain.Principal
		kind, role                               string
		username, serviceNumber                  sql.NullString
		stationID, departmentID, unitID, subRole sql.NullString
		mustChange                               int
		createdAt, updatedAt                     int64
	)
	err := row.Scan(
		&p.ID, &kind, &username, &serviceNumber, &p.PreferredName, &role,
		&stationID, &departmentID, &unitID, &subRole, &p.PasswordHash, &mustChange,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}

	p.Kind = domain.Kind(kind)
	p.Role = domain.Role(role)
	p.Username = mapNullString(username)
	p.ServiceNumber = mapNullString(serviceNumber)
	p.StationID = mapNullString(stationID)
	p.DepartmentID = mapNullString(departmentID)
	p.UnitID = mapNullString(unitID)
	p.SubRole = mapNullString(subRole)
	p.MustChangePassword = mustChange == 1
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

func (r *principalsRepo) GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE id = ?`, id)
	return scanPrincipal(row)
}

func (r *principalsRepo) GetPrincipalByLogin(
	ctx context.Context,
	kind domain.Kind,
	login string,
) (domain.Principal, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE kind = ? AND login = ?`,
		string(kind), strings.TrimSpace(login))
	return scanPrincipal(row)
}

func (r *principalsRepo) CreatePrincipal(ctx context.Context, p domain.Principal) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO principals (
			id, kind, login, username, service_number, preferred_name, role,
			station_id, department_id, unit_id, sub_role, password_hash, must_change_password,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(p.Kind), p.LoginName(),
		mapStringNull(p.Username), mapStringNull(p.ServiceNumber), p.PreferredName, string(p.Role),
		mapStringNull(p.StationID), mapStringNull(p.DepartmentID), mapStringNull(p.UnitID), mapStringNull(p.SubRole),
		p.PasswordHash, boolToInt(p.MustChangePassword),
		toMillis(p.CreatedAt), toMillis(p.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *principalsRepo) UpdatePassword(ctx context.Context, id, hash string, mustChange bool) error {
	return requireRow(r.q.ExecContext(ctx,
		`UPDATE principals SET password_hash = ?, must_change_password = ?, updated_at = ? WHERE id = ?`,
		hash, boolToInt(mustChange), toMillis(time.Now()), id))
}

func (r *principalsRepo) SetPrincipalUnit(ctx context.Context, id, unitID string) error {
	return requireRow(r.q.ExecContext(ctx,
		`UPDATE principals SET unit_id = ?, updated_at = ? WHERE id = ?`,
		mapStringNull(unitID), toMillis(time.Now()), id))
}

func (r *principalsRepo) ListPrincipals(ctx context.Context, f store.PrincipalFilter) ([]domain.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE 1 = 1`
	var args []any
	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(f.Kind))
	}
	if f.Role != "" {
		query += ` AND role = ?`
		args = append(args, string(f.Role))
	}
	if f.StationID != "" {
		query += ` AND station_id = ?`
		args = append(args, f.StationID)
	}
	query += ` ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *principalsRepo) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM principals WHERE role = ?`, string(role)).Scan(&n)
	return n, err
}

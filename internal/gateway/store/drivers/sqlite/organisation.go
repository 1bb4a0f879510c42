package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
)

type organisationRepo struct {
	q querier
}

func (r *organisationRepo) UpsertDepartment(ctx context.Context, d domain.Department) error {
	now := toMillis(time.Now())
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO departments (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = CASE WHEN excluded.name = '' THEN departments.name ELSE excluded.name END,
			updated_at = excluded.updated_at`,
		d.ID, d.Name, now, now)
	return err
}

func (r *organisationRepo) UpsertStation(ctx context.Context, s domain.Station) error {
	now := toMillis(time.Now())
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO stations (id, name, department_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = CASE WHEN excluded.name = '' THEN stations.name ELSE excluded.name END,
			department_id = COALESCE(excluded.department_id, stations.department_id),
			updated_at = excluded.updated_at`,
		s.ID, s.Name, mapStringNull(s.DepartmentID), now, now)
	return err
}

func (r *organisationRepo) GetStation(ctx context.Context, id string) (domain.Station, error) {
	var (
		s    domain.Station
		dept sql.NullString
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, department_id FROM stations WHERE id = ?`, id).
		Scan(&s.ID, &s.Name, &dept)
	if err != nil {
		return domain.Station{}, mapNotFound(err)
	}
	s.DepartmentID = mapNullString(dept)
	return s, nil
}

func (r *organisationRepo) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name FROM departments ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Department
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *organisationRepo) ListStations(ctx context.Context, departmentID string) ([]domain.Station, error) {
	query := `SELECT id, name, department_id FROM stations`
	var args []any
	if departmentID != "" {
		query += ` WHERE department_id = ?`
		args = append(args, departmentID)
	}
	query += ` ORDER BY name, id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Station
	for rows.Next() {
		var (
			s    domain.Station
			dept sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Name, &dept); err != nil {
			return nil, err
		}
		s.DepartmentID = mapNullString(dept)
		out = append(out, s)
	}
	return out, rows.Err()
}

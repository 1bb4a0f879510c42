package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
)

type unitsRepo struct {
	q querier
}

func scanUnit(row interface{ Scan(...any) error }) (domain.Unit, error) {
	var (
		u                       domain.Unit
		stationID, departmentID sql.NullString
		active                  sql.NullInt64
		createdAt, updatedAt    int64
	)
	if err := row.Scan(&u.ID, &u.Callsign, &stationID, &departmentID, &active, &createdAt, &updatedAt); err != nil {
		return domain.Unit{}, mapNotFound(err)
	}
	u.StationID = mapNullString(stationID)
	u.DepartmentID = mapNullString(departmentID)
	if active.Valid {
		u.Active = domain.ActiveFromBool(active.Int64 == 1)
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func activeToNull(a domain.ActiveState) sql.NullInt64 {
	active, known := a.Bool()
	if !known {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(boolToInt(active)), Valid: true}
}

func (r *unitsRepo) GetUnit(ctx context.Context, id string) (domain.Unit, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, callsign, station_id, department_id, active, created_at, updated_at
		FROM units WHERE id = ?`, id)
	return scanUnit(row)
}

func (r *unitsRepo) UpsertUnit(ctx context.Context, u domain.Unit) error {
	now := toMillis(time.Now())
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO units (id, callsign, station_id, department_id, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			callsign = CASE WHEN excluded.callsign = '' THEN units.callsign ELSE excluded.callsign END,
			station_id = COALESCE(excluded.station_id, units.station_id),
			department_id = COALESCE(excluded.department_id, units.department_id),
			active = COALESCE(excluded.active, units.active),
			updated_at = excluded.updated_at`,
		u.ID, u.Callsign, mapStringNull(u.StationID), mapStringNull(u.DepartmentID),
		activeToNull(u.Active), now, now)
	return err
}

func (r *unitsRepo) ListUnits(ctx context.Context, stationID string) ([]domain.Unit, error) {
	query := `SELECT id, callsign, station_id, department_id, active, created_at, updated_at FROM units`
	var args []any
	if stationID != "" {
		query += ` WHERE station_id = ?`
		args = append(args, stationID)
	}
	query += ` ORDER BY callsign, id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *unitsRepo) SetUnitActive(ctx context.Context, id string, active bool) error {
	return requireRow(r.q.ExecContext(ctx,
		`UPDATE units SET active = ?, updated_at = ? WHERE id = ?`,
		boolToInt(active), toMillis(time.Now()), id))
}

package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
)

type sessionsRepo struct {
	q querier
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sessions (id, principal_id, kind, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.PrincipalID, string(s.Kind), toMillis(s.CreatedAt), toMillis(s.ExpiresAt))
	return mapConstraint(err)
}

func (r *sessionsRepo) SessionActive(ctx context.Context, sid string) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sessions
		WHERE id = ? AND revoked_at IS NULL AND expires_at > ?`,
		sid, toMillis(time.Now())).Scan(&n)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *sessionsRepo) RevokeSession(ctx context.Context, sid string) error {
	return requireRow(r.q.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?) WHERE id = ?`,
		toMillis(time.Now()), sid))
}

func (r *sessionsRepo) RevokePrincipalSessions(ctx context.Context, principalID string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE principal_id = ? AND revoked_at IS NULL`,
		toMillis(time.Now()), principalID)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ? OR revoked_at IS NOT NULL`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
)

type passwordChangesRepo struct {
	q querier
}

func scanPasswordChange(row interface{ Scan(...any) error }) (domain.PasswordChange, error) {
	var (
		pc                   domain.PasswordChange
		kind                 string
		createdAt, expiresAt int64
	)
	if err := row.Scan(&pc.TokenHash, &pc.PrincipalID, &kind, &pc.Attempts, &createdAt, &expiresAt); err != nil {
		return domain.PasswordChange{}, mapNotFound(err)
	}
	pc.Kind = domain.Kind(kind)
	pc.CreatedAt = fromMillis(createdAt)
	pc.ExpiresAt = fromMillis(expiresAt)
	return pc, nil
}

func (r *passwordChangesRepo) CreatePasswordChange(ctx context.Context, pc domain.PasswordChange) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO password_changes (token_hash, principal_id, kind, attempts, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		pc.TokenHash, pc.PrincipalID, string(pc.Kind), pc.Attempts,
		toMillis(pc.CreatedAt), toMillis(pc.ExpiresAt))
	return mapConstraint(err)
}

func (r *passwordChangesRepo) GetPasswordChange(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (domain.PasswordChange, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT token_hash, principal_id, kind, attempts, created_at, expires_at
		FROM password_changes
		WHERE token_hash = ? AND expires_at > ?`,
		tokenHash, toMillis(now))
	return scanPasswordChange(row)
}

func (r *passwordChangesRepo) IncrementPasswordChangeAttempts(
	ctx context.Context,
	tokenHash string,
) (domain.PasswordChange, error) {
	row := r.q.QueryRowContext(ctx, `
		UPDATE password_changes SET attempts = attempts + 1
		WHERE token_hash = ?
		RETURNING token_hash, principal_id, kind, attempts, created_at, expires_at`,
		tokenHash)
	return scanPasswordChange(row)
}

func (r *passwordChangesRepo) DeletePasswordChange(ctx context.Context, tokenHash string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM password_changes WHERE token_hash = ?`, tokenHash)
	return err
}

func (r *passwordChangesRepo) DeletePrincipalPasswordChanges(ctx context.Context, principalID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM password_changes WHERE principal_id = ?`, principalID)
	return err
}

func (r *passwordChangesRepo) DeleteExpiredPasswordChanges(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM password_changes WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

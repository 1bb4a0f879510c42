package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/firegate/internal/gateway/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller commits or rolls back; the outer DB stays open

// Ping is a no-op for transactions; the connection is already held.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Principals() store.Principals           { return &principalsRepo{q: t.tx} }
func (t *txStore) Sessions() store.Sessions               { return &sessionsRepo{q: t.tx} }
func (t *txStore) PasswordChanges() store.PasswordChanges { return &passwordChangesRepo{q: t.tx} }
func (t *txStore) Organisation() store.Organisation       { return &organisationRepo{q: t.tx} }
func (t *txStore) Units() store.Units                     { return &unitsRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx is opened

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"docsai/internal/storage"
)

// KVPostgres is a PostgreSQL implementation of storage.Storage backed by the kv_store table.
// It uses database/sql with parameterized queries and contains no business logic.
type KVPostgres struct {
	db  *sql.DB
	now func() time.Time
}

// NewKVPostgres creates a new KVPostgres store.
func NewKVPostgres(db *sql.DB) *KVPostgres {
	return &KVPostgres{db: db, now: time.Now}
}

var _ storage.Storage = (*KVPostgres)(nil)

// Get returns the value stored under key.
func (r *KVPostgres) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM kv_store WHERE key = $1`
	var value []byte
	if err := r.db.QueryRowContext(ctx, q, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// Put upserts key in a single statement, so the row is replaced atomically.
func (r *KVPostgres) Put(ctx context.Context, key string, value []byte) error {
	const q = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, q, key, value, r.now().UTC())
	return err
}

// Delete removes key. It does not return an error if the row does not exist.
func (r *KVPostgres) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM kv_store WHERE key = $1`
	_, err := r.db.ExecContext(ctx, q, key)
	return err
}

// Ping checks database connectivity.
func (r *KVPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

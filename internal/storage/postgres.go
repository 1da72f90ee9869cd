package storage

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// PostgresStore keeps snapshots in the kv_store table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	const q = `SELECT value FROM kv_store WHERE key = $1`

	var v string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "select %s", key)
	}
	return v, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO kv_store (key, value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value, updated_at = NOW()
`
	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return errors.Wrapf(err, "upsert %s", key)
	}
	return nil
}

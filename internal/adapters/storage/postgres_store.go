package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jobsitelog/core/internal/ports"
)

// PostgresStore keeps each key in the app_state table, created by the
// migrate command. It applies the same value-size quota as the other
// backends so behaviour does not change when switching storage.
type PostgresStore struct {
	db    *sqlx.DB
	quota int64
}

// NewPostgresStore wraps an open connection.
func NewPostgresStore(db *sqlx.DB, quota int64) *PostgresStore {
	return &PostgresStore{db: db, quota: quota}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM app_state WHERE key = $1`, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ports.ErrKeyNotFound
		}
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	if s.quota > 0 && int64(len(value)) > s.quota {
		return fmt.Errorf("write %s: %w", key, ports.ErrQuotaExceeded)
	}

	query := `
		INSERT INTO app_state (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM app_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

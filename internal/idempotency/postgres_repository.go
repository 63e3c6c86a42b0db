package idempotency

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get retrieves an idempotency key by its key value.
func (r *PostgresRepository) Get(ctx context.Context, key string) (*IdempotencyKey, error) {
	query := `
		SELECT key, method, route, created_at, response_hash, status,
			response_body, response_status_code
		FROM idempotency_keys WHERE key = $1
	`
	var rec IdempotencyKey
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&rec.Key, &rec.Method, &rec.Route, &rec.CreatedAt,
		&rec.ResponseHash, &rec.Status, &rec.ResponseBody, &rec.ResponseStatusCode)
	if err == sql.ErrNoRows {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query idempotency key: %w", err)
	}
	return &rec, nil
}

// Store saves a new idempotency key.
func (r *PostgresRepository) Store(ctx context.Context, record *IdempotencyKey) error {
	if err := ValidateKey(record.Key); err != nil {
		return err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO idempotency_keys (key, method, route, created_at,
			response_hash, status, response_body, response_status_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.Key, record.Method, record.Route, record.CreatedAt,
		record.ResponseHash, record.Status, record.ResponseBody, record.ResponseStatusCode)
	if err != nil {
		// unique_violation
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrKeyExists
		}
		return fmt.Errorf("failed to insert idempotency key: %w", err)
	}
	return nil
}

// DeleteOlderThan removes idempotency keys older than the specified duration.
func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, duration time.Duration) (int64, error) {
	cutoff := time.Now().Add(-duration)
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete idempotency keys: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted keys: %w", err)
	}
	return deleted, nil
}

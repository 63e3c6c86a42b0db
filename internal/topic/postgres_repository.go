package topic

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new topic, assigning an ID when absent.
func (r *PostgresRepository) Create(ctx context.Context, t *Topic) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	metaJSON, err := json.Marshal(t.Meta)
	if err != nil {
		return fmt.Errorf("failed to encode topic meta: %w", err)
	}

	query := `
		INSERT INTO topics (id, title, category, mode, view_type, content, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		t.ID, t.Title, t.Category, t.Mode, t.ViewType, t.Content, metaJSON, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert topic: %w", err)
	}
	return nil
}

// GetByID retrieves a topic by its ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Topic, error) {
	query := `
		SELECT id, title, category, mode, view_type, content, meta, created_at
		FROM topics WHERE id = $1
	`
	t, err := scanTopic(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrTopicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query topic: %w", err)
	}
	return t, nil
}

// List returns all topics ordered by creation time descending.
func (r *PostgresRepository) List(ctx context.Context) ([]*Topic, error) {
	query := `
		SELECT id, title, category, mode, view_type, content, meta, created_at
		FROM topics ORDER BY created_at DESC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	var topics []*Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate topics: %w", err)
	}
	return topics, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTopic(row rowScanner) (*Topic, error) {
	var t Topic
	var metaJSON []byte
	if err := row.Scan(&t.ID, &t.Title, &t.Category, &t.Mode, &t.ViewType, &t.Content, &metaJSON, &t.CreatedAt); err != nil {
		return nil, err
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &t.Meta); err != nil {
			return nil, fmt.Errorf("failed to decode topic meta: %w", err)
		}
	}
	return &t, nil
}

package item

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

// Create stores a new item, assigning an ID when absent.
func (r *PostgresRepository) Create(ctx context.Context, it *Item) error {
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	now := time.Now()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
	if it.UpdatedAt.IsZero() {
		it.UpdatedAt = now
	}
	if it.Rating == 0 {
		it.Rating = DefaultRating
	}

	query := `
		INSERT INTO items (id, topic_id, name, image_url, description, rank_order,
			rating, wins, losses, matches, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		it.ID, it.TopicID, it.Name, it.ImageURL, it.Description, it.RankOrder,
		it.Rating, it.Wins, it.Losses, it.Matches, it.Version, it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// GetByID retrieves an item by its ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Item, error) {
	query := itemSelect + ` WHERE id = $1`
	it, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query item: %w", err)
	}
	return it, nil
}

// ListByTopic returns all items of a topic ordered by rating descending.
func (r *PostgresRepository) ListByTopic(ctx context.Context, topicID string) ([]*Item, error) {
	query := itemSelect + ` WHERE topic_id = $1 ORDER BY rating DESC, name ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// ApplyOutcome persists a winner/loser stat update in a single transaction.
// Both UPDATEs are guarded by the version the update was computed from; if
// either row has moved on, the transaction is rolled back and
// ErrVersionConflict is returned so the caller can re-read and retry.
func (r *PostgresRepository) ApplyOutcome(ctx context.Context, winner, loser *Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, it := range []*Item{winner, loser} {
		res, err := tx.ExecContext(ctx, `
			UPDATE items
			SET rating = $1, wins = $2, losses = $3, matches = $4,
				version = version + 1, updated_at = NOW()
			WHERE id = $5 AND version = $6
		`, it.Rating, it.Wins, it.Losses, it.Matches, it.ID, it.Version)
		if err != nil {
			return fmt.Errorf("failed to update item %s: %w", it.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update result: %w", err)
		}
		if affected == 0 {
			return ErrVersionConflict
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outcome: %w", err)
	}
	winner.Version++
	loser.Version++
	return nil
}

// SaveRankSnapshot stores the rank map for a topic, replacing any
// previous snapshot.
func (r *PostgresRepository) SaveRankSnapshot(ctx context.Context, topicID string, ranks map[string]int) error {
	ranksJSON, err := json.Marshal(ranks)
	if err != nil {
		return fmt.Errorf("failed to encode rank snapshot: %w", err)
	}

	query := `
		INSERT INTO rank_snapshots (topic_id, ranks, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (topic_id) DO UPDATE SET ranks = $2, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, topicID, ranksJSON); err != nil {
		return fmt.Errorf("failed to save rank snapshot: %w", err)
	}
	return nil
}

// GetRankSnapshot returns the last stored rank map for a topic.
func (r *PostgresRepository) GetRankSnapshot(ctx context.Context, topicID string) (map[string]int, error) {
	var ranksJSON []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT ranks FROM rank_snapshots WHERE topic_id = $1`, topicID).Scan(&ranksJSON)
	if err == sql.ErrNoRows {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rank snapshot: %w", err)
	}

	ranks := make(map[string]int)
	if err := json.Unmarshal(ranksJSON, &ranks); err != nil {
		return nil, fmt.Errorf("failed to decode rank snapshot: %w", err)
	}
	return ranks, nil
}

const itemSelect = `
	SELECT id, topic_id, name, image_url, description, rank_order,
		rating, wins, losses, matches, version, created_at, updated_at
	FROM items
`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var it Item
	if err := row.Scan(&it.ID, &it.TopicID, &it.Name, &it.ImageURL, &it.Description,
		&it.RankOrder, &it.Rating, &it.Wins, &it.Losses, &it.Matches,
		&it.Version, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

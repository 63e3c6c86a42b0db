package leaderboard

import (
	"context"
	"database/sql"
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

// Create stores a new score row, assigning an ID when absent.
func (r *PostgresRepository) Create(ctx context.Context, s *GameScore) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO game_scores (id, game_id, nickname, score, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.GameID, s.Nickname, s.Score, s.Meta, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert score: %w", err)
	}
	return nil
}

// TopN returns up to n scores for a game, best first.
func (r *PostgresRepository) TopN(ctx context.Context, gameID string, n int) ([]*GameScore, error) {
	query := `
		SELECT id, game_id, nickname, score, meta, created_at
		FROM game_scores
		WHERE game_id = $1
		ORDER BY score DESC, created_at ASC, id ASC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, gameID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var scores []*GameScore
	for rows.Next() {
		var s GameScore
		if err := rows.Scan(&s.ID, &s.GameID, &s.Nickname, &s.Score, &s.Meta, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scores: %w", err)
	}
	return scores, nil
}

// CountByGame returns the number of submissions for a game.
func (r *PostgresRepository) CountByGame(ctx context.Context, gameID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_scores WHERE game_id = $1`, gameID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scores: %w", err)
	}
	return count, nil
}

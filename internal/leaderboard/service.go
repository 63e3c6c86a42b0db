package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
)

// Limits for top-list queries.
const (
	DefaultTopN = 10
	MaxTopN     = 100
)

// Service validates and records score submissions and serves top lists.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a leaderboard service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Submit records one play result. Negative scores are clamped to zero
// rather than rejected; meta is stored opaquely and never inspected.
func (s *Service) Submit(ctx context.Context, gameID, nickname string, score int, meta map[string]any) (*GameScore, error) {
	if !KnownGames[gameID] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
	}
	if score < 0 {
		score = 0
	}

	metaBlob, err := EncodeMeta(meta)
	if err != nil {
		return nil, err
	}

	gs := &GameScore{
		GameID:   gameID,
		Nickname: nickname,
		Score:    score,
		Meta:     metaBlob,
	}
	if err := s.repo.Create(ctx, gs); err != nil {
		return nil, fmt.Errorf("failed to store score: %w", err)
	}

	s.logger.Debug("score submitted",
		"game_id", gameID,
		"score", score)
	return gs, nil
}

// Top returns the best scores for a game. limit <= 0 falls back to
// DefaultTopN and is capped at MaxTopN.
func (s *Service) Top(ctx context.Context, gameID string, limit int) ([]*GameScore, error) {
	if !KnownGames[gameID] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
	}
	if limit <= 0 {
		limit = DefaultTopN
	}
	if limit > MaxTopN {
		limit = MaxTopN
	}
	return s.repo.TopN(ctx, gameID, limit)
}

// Count returns the total number of submissions for a game, independent
// of any top-list limit.
func (s *Service) Count(ctx context.Context, gameID string) (int, error) {
	if !KnownGames[gameID] {
		return 0, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
	}
	return s.repo.CountByGame(ctx, gameID)
}

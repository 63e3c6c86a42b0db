package ranking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hanbyul-dev/matchup/internal/item"
	"github.com/hanbyul-dev/matchup/internal/topic"
)

// Service builds ranking projections for topics and maintains the rank
// snapshot used for movement deltas.
type Service struct {
	topics topic.Repository
	items  item.Repository
	logger *slog.Logger
}

// NewService creates a ranking service.
func NewService(topics topic.Repository, items item.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		topics: topics,
		items:  items,
		logger: logger,
	}
}

// Ranking returns the current projection for a topic. Fact topics rank by
// curated order; every other mode ranks by rating. Deltas compare against
// the snapshot taken at the previous call, which this call then replaces.
func (s *Service) Ranking(ctx context.Context, topicID string) ([]Row, error) {
	t, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListByTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	var rows []Row
	if topic.ResolveMode(t) == topic.ModeFact {
		rows = ByOrder(items)
	} else {
		rows = ByScore(items)
	}

	previous, err := s.items.GetRankSnapshot(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rank snapshot: %w", err)
	}
	ApplyDeltas(rows, previous)

	if err := s.items.SaveRankSnapshot(ctx, topicID, Ranks(rows)); err != nil {
		// The projection is still valid; deltas just stay anchored to
		// the older snapshot next time.
		s.logger.Warn("failed to save rank snapshot",
			"topic_id", topicID,
			"error", err)
	}
	return rows, nil
}

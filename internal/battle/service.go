package battle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hanbyul-dev/matchup/internal/item"
	"github.com/hanbyul-dev/matchup/internal/topic"
)

// Common errors for battle operations.
var (
	ErrModeMismatch = errors.New("topic is not in battle mode")
	ErrSameItem     = errors.New("winner and loser must differ")
	ErrCrossTopic   = errors.New("items belong to different topics")
	ErrConflict     = errors.New("outcome could not be applied after retries")
)

// maxOutcomeRetries bounds the re-read-and-retry loop when a concurrent
// vote moves an item's version under us.
const maxOutcomeRetries = 3

// Outcome describes the applied result of a duel.
type Outcome struct {
	Winner      *item.Item `json:"winner"`
	Loser       *item.Item `json:"loser"`
	WinnerDelta int        `json:"winner_delta"`
	LoserDelta  int        `json:"loser_delta"`
}

// Service coordinates pair selection and outcome recording for
// battle-mode topics.
type Service struct {
	topics   topic.Repository
	items    item.Repository
	selector *Selector
	elo      EloParams
	metrics  *Metrics
	logger   *slog.Logger
}

// NewService creates a battle service. metrics may be nil.
func NewService(topics topic.Repository, items item.Repository, selector *Selector, elo EloParams, metrics *Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if selector == nil {
		selector = NewSelector(DefaultExposureBias, nil)
	}
	if elo.K == 0 {
		elo = DefaultEloParams()
	}
	return &Service{
		topics:   topics,
		items:    items,
		selector: selector,
		elo:      elo,
		metrics:  metrics,
		logger:   logger,
	}
}

// SelectPair returns two distinct items of a battle topic for the next
// duel. sessionKey scopes back-to-back repeat avoidance per caller.
func (s *Service) SelectPair(ctx context.Context, topicID, sessionKey string) (*item.Item, *item.Item, error) {
	t, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, nil, err
	}
	if topic.ResolveMode(t) != topic.ModeBattle {
		return nil, nil, ErrModeMismatch
	}

	items, err := s.items.ListByTopic(ctx, topicID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load items: %w", err)
	}

	a, b, err := s.selector.SelectPair(items, sessionKey)
	if err != nil {
		return nil, nil, err
	}
	if s.metrics != nil {
		s.metrics.IncPairsSelected(topicID)
	}
	return a, b, nil
}

// RecordOutcome applies a duel result: the winner gains rating, the loser
// gives some up, and win/loss/match counters advance on both. The stat
// update is atomic per item pair; when a concurrent vote races us, the
// items are re-read and the update retried a bounded number of times
// before giving up with ErrConflict.
func (s *Service) RecordOutcome(ctx context.Context, topicID, winnerID, loserID string) (*Outcome, error) {
	if winnerID == loserID {
		return nil, ErrSameItem
	}

	t, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic.ResolveMode(t) != topic.ModeBattle {
		return nil, ErrModeMismatch
	}

	for attempt := 0; attempt < maxOutcomeRetries; attempt++ {
		winner, err := s.items.GetByID(ctx, winnerID)
		if err != nil {
			return nil, err
		}
		loser, err := s.items.GetByID(ctx, loserID)
		if err != nil {
			return nil, err
		}
		if winner.TopicID != topicID || loser.TopicID != topicID {
			return nil, ErrCrossTopic
		}

		oldWinner, oldLoser := winner.Rating, loser.Rating
		winner.Rating, loser.Rating = Update(oldWinner, oldLoser, s.elo)
		winner.Wins++
		winner.Matches++
		loser.Losses++
		loser.Matches++

		err = s.items.ApplyOutcome(ctx, winner, loser)
		if errors.Is(err, item.ErrVersionConflict) {
			if s.metrics != nil {
				s.metrics.IncOutcomeConflicts(topicID)
			}
			s.logger.Debug("outcome conflicted, retrying",
				"topic_id", topicID,
				"winner_id", winnerID,
				"attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to apply outcome: %w", err)
		}

		if s.metrics != nil {
			s.metrics.IncOutcomesRecorded(topicID)
		}
		return &Outcome{
			Winner:      winner,
			Loser:       loser,
			WinnerDelta: winner.Rating - oldWinner,
			LoserDelta:  loser.Rating - oldLoser,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s vs %s", ErrConflict, winnerID, loserID)
}

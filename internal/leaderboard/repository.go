package leaderboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for score data operations. Scores are
// append-only: there is no update or delete.
type Repository interface {
	// Create stores a new score row, assigning an ID when absent.
	Create(ctx context.Context, s *GameScore) error

	// TopN returns up to n scores for a game, best first. Ties on score
	// go to the earlier submission.
	TopN(ctx context.Context, gameID string, n int) ([]*GameScore, error)

	// CountByGame returns the number of submissions for a game.
	CountByGame(ctx context.Context, gameID string) (int, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex; used for testing and development.
type InMemoryRepository struct {
	mu     sync.RWMutex
	scores []*GameScore
}

// NewInMemoryRepository creates a new in-memory score repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Create stores a new score row, assigning an ID when absent.
func (r *InMemoryRepository) Create(ctx context.Context, s *GameScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	r.scores = append(r.scores, copyScore(s))
	return nil
}

// TopN returns up to n scores for a game, best first.
func (r *InMemoryRepository) TopN(ctx context.Context, gameID string, n int) ([]*GameScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*GameScore
	for _, s := range r.scores {
		if s.GameID == gameID {
			out = append(out, copyScore(s))
		}
	}
	sortScores(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// CountByGame returns the number of submissions for a game.
func (r *InMemoryRepository) CountByGame(ctx context.Context, gameID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, s := range r.scores {
		if s.GameID == gameID {
			count++
		}
	}
	return count, nil
}

// copyScore creates a deep copy to prevent external mutation.
func copyScore(s *GameScore) *GameScore {
	if s == nil {
		return nil
	}
	c := *s
	if s.Meta != nil {
		c.Meta = make([]byte, len(s.Meta))
		copy(c.Meta, s.Meta)
	}
	return &c
}

// sortScores orders score DESC, then created_at ASC so an earlier
// submission outranks a later equal one, then ID ASC for stability.
func sortScores(scores []*GameScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		if !scores[i].CreatedAt.Equal(scores[j].CreatedAt) {
			return scores[i].CreatedAt.Before(scores[j].CreatedAt)
		}
		return scores[i].ID < scores[j].ID
	})
}

package comment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for comment data operations.
// Comments are append-only: there is no update or delete.
type Repository interface {
	// Create stores a new comment, assigning an ID when absent.
	Create(ctx context.Context, c *Comment) error

	// ListRecentByTopic returns up to limit comments for a topic, newest
	// first. limit is clamped to MaxListLimit.
	ListRecentByTopic(ctx context.Context, topicID string, limit int) ([]*Comment, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex; used for testing and development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	comments []*Comment
}

// NewInMemoryRepository creates a new in-memory comment repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Create stores a new comment, assigning an ID when absent.
func (r *InMemoryRepository) Create(ctx context.Context, c *Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	cp := *c
	r.comments = append(r.comments, &cp)
	return nil
}

// ListRecentByTopic returns up to limit comments for a topic, newest first.
func (r *InMemoryRepository) ListRecentByTopic(ctx context.Context, topicID string, limit int) ([]*Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	var out []*Comment
	for _, c := range r.comments {
		if c.TopicID == topicID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

package topic

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for topic data operations.
// Mode is write-once: there is deliberately no update operation for it.
type Repository interface {
	// Create stores a new topic, assigning an ID when absent.
	Create(ctx context.Context, t *Topic) error

	// GetByID retrieves a topic by its ID.
	// Returns ErrTopicNotFound if the topic doesn't exist.
	GetByID(ctx context.Context, id string) (*Topic, error)

	// List returns all topics ordered by creation time descending.
	List(ctx context.Context) ([]*Topic, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex; used for testing and development.
type InMemoryRepository struct {
	mu     sync.RWMutex
	topics map[string]*Topic
}

// NewInMemoryRepository creates a new in-memory topic repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		topics: make(map[string]*Topic),
	}
}

// Create stores a new topic, assigning an ID when absent.
func (r *InMemoryRepository) Create(ctx context.Context, t *Topic) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if _, exists := r.topics[t.ID]; exists {
		return ErrTopicExists
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	r.topics[t.ID] = copyTopic(t)
	return nil
}

// GetByID retrieves a topic by its ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.topics[id]
	if !ok {
		return nil, ErrTopicNotFound
	}
	return copyTopic(t), nil
}

// List returns all topics ordered by creation time descending.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Topic, 0, len(r.topics))
	for _, t := range r.topics {
		out = append(out, copyTopic(t))
	}
	sortTopicsByCreatedDesc(out)
	return out, nil
}

// copyTopic creates a deep copy to prevent external mutation.
func copyTopic(t *Topic) *Topic {
	if t == nil {
		return nil
	}
	c := *t
	if t.Meta != nil {
		c.Meta = make(map[string]string, len(t.Meta))
		for k, v := range t.Meta {
			c.Meta[k] = v
		}
	}
	return &c
}

// sortTopicsByCreatedDesc sorts topics by created_at DESC, ID ASC as a
// tie-breaker for stable listings.
func sortTopicsByCreatedDesc(topics []*Topic) {
	sort.Slice(topics, func(i, j int) bool {
		if !topics[i].CreatedAt.Equal(topics[j].CreatedAt) {
			return topics[i].CreatedAt.After(topics[j].CreatedAt)
		}
		return topics[i].ID < topics[j].ID
	})
}

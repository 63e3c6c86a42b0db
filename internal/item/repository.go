package item

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for item data operations.
type Repository interface {
	// Create stores a new item, assigning an ID when absent.
	Create(ctx context.Context, it *Item) error

	// GetByID retrieves an item by its ID.
	// Returns ErrItemNotFound if the item doesn't exist.
	GetByID(ctx context.Context, id string) (*Item, error)

	// ListByTopic returns all items of a topic ordered by rating
	// descending, then name ascending.
	ListByTopic(ctx context.Context, topicID string) ([]*Item, error)

	// ApplyOutcome persists the updated stats of a winner/loser pair as a
	// single atomic operation. The Version fields on the passed items must
	// hold the versions the update was computed from; if either item has
	// moved on, nothing is written and ErrVersionConflict is returned.
	// On success the passed items carry their new versions.
	ApplyOutcome(ctx context.Context, winner, loser *Item) error

	// SaveRankSnapshot stores the item-ID-to-rank map for a topic,
	// replacing any previous snapshot.
	SaveRankSnapshot(ctx context.Context, topicID string, ranks map[string]int) error

	// GetRankSnapshot returns the last stored rank map for a topic, or an
	// empty map when no snapshot exists.
	GetRankSnapshot(ctx context.Context, topicID string) (map[string]int, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex; used for testing and development.
type InMemoryRepository struct {
	mu        sync.RWMutex
	items     map[string]*Item
	snapshots map[string]map[string]int
}

// NewInMemoryRepository creates a new in-memory item repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		items:     make(map[string]*Item),
		snapshots: make(map[string]map[string]int),
	}
}

// Create stores a new item, assigning an ID when absent.
func (r *InMemoryRepository) Create(ctx context.Context, it *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	if _, exists := r.items[it.ID]; exists {
		return ErrItemExists
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

	r.items[it.ID] = copyItem(it)
	return nil
}

// GetByID retrieves an item by its ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return copyItem(it), nil
}

// ListByTopic returns all items of a topic ordered by rating descending.
func (r *InMemoryRepository) ListByTopic(ctx context.Context, topicID string) ([]*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Item
	for _, it := range r.items {
		if it.TopicID == topicID {
			out = append(out, copyItem(it))
		}
	}
	sortItemsByRatingDesc(out)
	return out, nil
}

// ApplyOutcome persists a winner/loser stat update atomically, guarded by
// the versions on the passed items.
func (r *InMemoryRepository) ApplyOutcome(ctx context.Context, winner, loser *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	curWinner, ok := r.items[winner.ID]
	if !ok {
		return ErrItemNotFound
	}
	curLoser, ok := r.items[loser.ID]
	if !ok {
		return ErrItemNotFound
	}
	if curWinner.Version != winner.Version || curLoser.Version != loser.Version {
		return ErrVersionConflict
	}

	now := time.Now()
	for _, pair := range []struct{ src, dst *Item }{{winner, curWinner}, {loser, curLoser}} {
		pair.dst.Rating = pair.src.Rating
		pair.dst.Wins = pair.src.Wins
		pair.dst.Losses = pair.src.Losses
		pair.dst.Matches = pair.src.Matches
		pair.dst.Version++
		pair.dst.UpdatedAt = now
		pair.src.Version = pair.dst.Version
		pair.src.UpdatedAt = now
	}
	return nil
}

// SaveRankSnapshot stores the rank map for a topic.
func (r *InMemoryRepository) SaveRankSnapshot(ctx context.Context, topicID string, ranks map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := make(map[string]int, len(ranks))
	for k, v := range ranks {
		snap[k] = v
	}
	r.snapshots[topicID] = snap
	return nil
}

// GetRankSnapshot returns the last stored rank map for a topic.
func (r *InMemoryRepository) GetRankSnapshot(ctx context.Context, topicID string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.snapshots[topicID]
	if !ok {
		return map[string]int{}, nil
	}
	out := make(map[string]int, len(snap))
	for k, v := range snap {
		out[k] = v
	}
	return out, nil
}

// copyItem creates a copy to prevent external mutation.
func copyItem(it *Item) *Item {
	if it == nil {
		return nil
	}
	c := *it
	return &c
}

// sortItemsByRatingDesc sorts items by rating DESC with name, then ID, as
// tie-breakers for stable listings.
func sortItemsByRatingDesc(items []*Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Rating != items[j].Rating {
			return items[i].Rating > items[j].Rating
		}
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
}

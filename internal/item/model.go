// Package item provides models and repositories for competitors within a
// topic, including the optimistic-concurrency outcome application used by
// battle mode.
package item

import (
	"errors"
	"time"
)

// Common errors for item operations.
var (
	ErrItemNotFound    = errors.New("item not found")
	ErrItemExists      = errors.New("item already exists")
	ErrVersionConflict = errors.New("item version conflict")
)

// Item is a competitor inside a single topic. Rating, Wins, Losses and
// Matches always move together; Version guards concurrent updates.
type Item struct {
	ID          string `json:"id"`
	TopicID     string `json:"topic_id"`
	Name        string `json:"name"`
	ImageURL    string `json:"image_url,omitempty"`
	Description string `json:"description,omitempty"`

	// RankOrder is the curated position used by fact topics. Zero means
	// unordered.
	RankOrder int `json:"rank_order,omitempty"`

	Rating  int `json:"rating"`
	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
	Matches int `json:"matches"`

	// Version increments on every stat update. Internal only.
	Version int64 `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultRating is the rating assigned to new items.
const DefaultRating = 1500

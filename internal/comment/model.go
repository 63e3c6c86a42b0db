// Package comment provides append-only topic comments.
package comment

import (
	"errors"
	"time"
)

// ErrCommentNotFound is returned when a comment lookup misses.
var ErrCommentNotFound = errors.New("comment not found")

// MaxListLimit caps how many comments a single listing returns.
const MaxListLimit = 50

// Comment is one anonymous remark on a topic. Comments are never edited
// or deleted through the API.
type Comment struct {
	ID       string `json:"id"`
	TopicID  string `json:"topic_id"`
	Nickname string `json:"nickname"`
	Body     string `json:"body"`

	CreatedAt time.Time `json:"created_at"`
}

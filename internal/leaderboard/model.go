// Package leaderboard stores mini-game scores and serves per-game top
// lists. Score rows are append-only; a submission is a fact that never
// changes after the fact.
package leaderboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Common errors for leaderboard operations.
var (
	ErrUnknownGame   = errors.New("unknown game")
	ErrScoreNotFound = errors.New("score not found")
)

// Game identifiers. The set is fixed; submissions for anything else are
// rejected.
const (
	GameReaction = "reaction"
	GameTiming   = "timing"
	GameAim      = "aim"
	GameMemory   = "memory"
	GameNumber   = "number"
)

// KnownGames is the closed set of accepted game IDs.
var KnownGames = map[string]bool{
	GameReaction: true,
	GameTiming:   true,
	GameAim:      true,
	GameMemory:   true,
	GameNumber:   true,
}

// GameScore is one submitted play result. Meta carries game-specific
// details (per-round times, accuracy, and so on) as an opaque CBOR blob;
// the engine never interprets it.
type GameScore struct {
	ID       string `json:"id"`
	GameID   string `json:"game_id"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Meta     []byte `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// EncodeMeta serializes game-specific details into the stored blob form.
// A nil map encodes to nil.
func EncodeMeta(meta map[string]any) ([]byte, error) {
	if meta == nil {
		return nil, nil
	}
	b, err := cbor.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode score meta: %w", err)
	}
	return b, nil
}

// DecodeMeta deserializes a stored meta blob. A nil blob decodes to nil.
func DecodeMeta(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var meta map[string]any
	if err := cbor.Unmarshal(b, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode score meta: %w", err)
	}
	return meta, nil
}

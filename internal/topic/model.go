// Package topic provides models and repositories for ranking topics and
// the resolution of their competition mode.
package topic

import (
	"errors"
	"time"
)

// Common errors for topic operations.
var (
	ErrTopicNotFound = errors.New("topic not found")
	ErrTopicExists   = errors.New("topic already exists")
)

// Mode identifies one of the four competition presentations.
// The set is closed; new modes are not accepted at runtime.
type Mode string

const (
	// ModeBattle is pairwise Elo-style duels.
	ModeBattle Mode = "A"
	// ModeTest is a score-based diagnostic quiz result.
	ModeTest Mode = "B"
	// ModeTier is manual tier-bucket placement.
	ModeTier Mode = "C"
	// ModeFact is a static, curator-ordered reference listing.
	ModeFact Mode = "D"
)

// Route is a canonical presentation route identifier handed to the
// rendering layer. The core never interprets routes beyond equality.
type Route string

const (
	RouteBattle  Route = "battle"
	RouteRanking Route = "ranking"
	RouteTest    Route = "test"
	RouteTier    Route = "tier"
	RouteFact    Route = "fact"
)

// Legacy view-type values still present on topics created before the
// mode field existed.
const (
	viewTypeFact = "FACT"
	viewTypeTest = "TEST"
	viewTypeTier = "TIER"
)

// Topic is a ranking competition container. Mode is immutable after
// creation; the repository exposes no way to change it.
type Topic struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`

	// Mode is the explicit competition mode. Empty on topics created
	// before the field existed; ViewType is the fallback for those.
	Mode     string `json:"mode,omitempty"`
	ViewType string `json:"view_type,omitempty"`

	// Content holds markdown for fact topics. Opaque to the core.
	Content string `json:"content,omitempty"`

	Meta map[string]string `json:"meta,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ResolveMode maps a topic to exactly one Mode. It is total: an explicit
// mode field wins, otherwise the legacy view-type decides, otherwise the
// topic is a battle topic. Unknown values never error.
func ResolveMode(t *Topic) Mode {
	if t != nil {
		switch Mode(t.Mode) {
		case ModeBattle, ModeTest, ModeTier, ModeFact:
			return Mode(t.Mode)
		}
		switch t.ViewType {
		case viewTypeFact:
			return ModeFact
		case viewTypeTest:
			return ModeTest
		case viewTypeTier:
			return ModeTier
		}
	}
	return ModeBattle
}

// PlayPath returns the route for a topic's interactive view.
func PlayPath(t *Topic) Route {
	switch ResolveMode(t) {
	case ModeTest:
		return RouteTest
	case ModeTier:
		return RouteTier
	case ModeFact:
		return RouteFact
	default:
		return RouteBattle
	}
}

// ResultPath returns the route for a topic's result view. Battle topics
// split play and result (duel screen vs. ranking screen); for the other
// modes the two coincide.
func ResultPath(t *Topic) Route {
	if ResolveMode(t) == ModeBattle {
		return RouteRanking
	}
	return PlayPath(t)
}

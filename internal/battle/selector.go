package battle

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hanbyul-dev/matchup/internal/item"
)

// ErrNoPair is returned when a topic has fewer than two items to duel.
var ErrNoPair = errors.New("not enough items to form a pair")

// DefaultExposureBias is the default weighting exponent for pair
// selection. Zero would mean uniform selection.
const DefaultExposureBias = 1.0

// maxTrackedSessions caps the repeat-avoidance map. Session keys are
// client-supplied, so a client rotating keys must not grow memory past
// this; new sessions beyond the cap are served without repeat tracking
// until Cleanup makes room.
const maxTrackedSessions = 65536

// lastServed is the most recent pair a session saw and when.
type lastServed struct {
	pair [2]string
	seen time.Time
}

// Selector picks duel pairs, biased toward items that have been shown
// less often so exposure evens out over time. It also remembers the last
// pair served to each session and avoids serving it again back-to-back
// when an alternative exists.
type Selector struct {
	rng  *rand.Rand
	bias float64

	mu        sync.Mutex
	lastPairs map[string]lastServed
}

// NewSelector creates a Selector with the given exposure bias. A nil rng
// falls back to a source seeded from the global generator.
func NewSelector(bias float64, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{
		rng:       rng,
		bias:      bias,
		lastPairs: make(map[string]lastServed),
	}
}

// SelectPair returns two distinct items from the slice. Selection is
// weighted by 1/(matches+1)^bias. sessionKey scopes back-to-back repeat
// avoidance; an empty key disables it.
func (s *Selector) SelectPair(items []*item.Item, sessionKey string) (*item.Item, *item.Item, error) {
	if len(items) < 2 {
		return nil, nil, ErrNoPair
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, b := s.pick(items)
	if sessionKey != "" && len(items) > 2 {
		last := s.lastPairs[sessionKey].pair
		// A couple of redraws is enough; selection stays random.
		for tries := 0; tries < 4 && samePair(last, a.ID, b.ID); tries++ {
			a, b = s.pick(items)
		}
	}
	if sessionKey != "" {
		_, known := s.lastPairs[sessionKey]
		if known || len(s.lastPairs) < maxTrackedSessions {
			s.lastPairs[sessionKey] = lastServed{
				pair: [2]string{a.ID, b.ID},
				seen: time.Now(),
			}
		}
	}
	return a, b, nil
}

// Cleanup removes session entries that have been idle longer than maxAge.
// This should be called periodically in production.
func (s *Selector) Cleanup(maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for key, ls := range s.lastPairs {
		if ls.seen.Before(cutoff) {
			delete(s.lastPairs, key)
		}
	}
}

// pick draws two distinct items by weighted sampling without replacement.
func (s *Selector) pick(items []*item.Item) (*item.Item, *item.Item) {
	weights := make([]float64, len(items))
	var total float64
	for i, it := range items {
		w := 1.0 / math.Pow(float64(it.Matches+1), s.bias)
		weights[i] = w
		total += w
	}

	first := s.draw(weights, total, -1)
	second := s.draw(weights, total-weights[first], first)
	return items[first], items[second]
}

// draw picks an index proportionally to weights, skipping the excluded
// index.
func (s *Selector) draw(weights []float64, total float64, exclude int) int {
	x := s.rng.Float64() * total
	for i, w := range weights {
		if i == exclude {
			continue
		}
		x -= w
		if x < 0 {
			return i
		}
	}
	// Float underflow can leave a sliver of x; fall back to the last
	// eligible index.
	for i := len(weights) - 1; i >= 0; i-- {
		if i != exclude {
			return i
		}
	}
	return 0
}

func samePair(last [2]string, a, b string) bool {
	return (last[0] == a && last[1] == b) || (last[0] == b && last[1] == a)
}

// Package battle implements pairwise duels for battle-mode topics: pair
// selection with exposure bias, Elo rating updates and conflict-safe
// outcome recording.
package battle

import "math"

// DefaultK is the rating sensitivity used when no override is configured.
const DefaultK = 32

// EloParams controls the rating update.
type EloParams struct {
	// K scales how far a single outcome moves both ratings.
	K float64
	// Floor is the lowest rating an item can drop to.
	Floor int
}

// DefaultEloParams returns the standard parameters: K=32, floor 0.
func DefaultEloParams() EloParams {
	return EloParams{K: DefaultK, Floor: 0}
}

// Expected returns the probability that a player rated ra beats a player
// rated rb under the Elo model.
func Expected(ra, rb int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(rb-ra)/400.0))
}

// Update computes the post-duel ratings for a winner and loser. Results
// are rounded to the nearest integer and never drop below the floor. The
// winner always gains at least one point and the loser always gives up at
// least one, so lopsided pairings cannot round a real outcome away.
func Update(winner, loser int, p EloParams) (newWinner, newLoser int) {
	expWin := Expected(winner, loser)
	expLose := 1.0 - expWin

	gain := int(math.Round(p.K * (1.0 - expWin)))
	if gain < 1 {
		gain = 1
	}
	drop := int(math.Round(p.K * expLose))
	if drop < 1 {
		drop = 1
	}

	newWinner = winner + gain
	newLoser = loser - drop
	if newWinner < p.Floor {
		newWinner = p.Floor
	}
	if newLoser < p.Floor {
		newLoser = p.Floor
	}
	return newWinner, newLoser
}

// Package trick implements the Bura trick-beating evaluator: given a
// challenger's card set and the current owner's card set plus trump,
// it computes the maximum injective pairing where each paired
// challenger card strictly beats its owner card. Grounded on the
// teacher's small bounded-candidate combinatorial search style found
// in internal/evaluator (hand evaluation over small fixed-size card
// sets), generalized here to exact backtracking maximum matching since
// Bura tricks never exceed four cards per side.
package trick

import "github.com/bura/server/internal/card"

// Outcome classifies the result of a follower's play against the
// current trick owner.
type Outcome int

const (
	// Beat means the challenger's cards fully beat the owner's cards;
	// the challenger becomes the new owner.
	Beat Outcome = iota
	// Partial means some but not all owner cards were beaten; the
	// owner is unchanged.
	Partial
	// Discard means none of the owner's cards were beaten.
	Discard
)

// String returns the wire-facing outcome label.
func (o Outcome) String() string {
	switch o {
	case Beat:
		return "beat"
	case Partial:
		return "partial"
	case Discard:
		return "discard"
	default:
		return "unknown"
	}
}

// Result is the outcome of evaluating a challenger's play against an
// owner's cards.
type Result struct {
	Outcome      Outcome
	MaxBeatCount int
}

// Evaluate computes the maximum beat count of challenger against
// owner under trump, and classifies it relative to requiredCount (the
// number of cards the follower was required to play, normally
// len(owner)).
//
// The search is exact maximum bipartite matching by backtracking over
// owner cards: each owner card is either left unpaired or paired with
// any not-yet-used challenger card that beats it. Owner hands in Bura
// never exceed four cards, so the search space is bounded by 4! and
// runs in constant time.
func Evaluate(challenger, owner []card.Card, trump card.Suit, requiredCount int) Result {
	used := make([]bool, len(challenger))
	best := maxMatch(challenger, owner, trump, used, 0)

	switch {
	case best == requiredCount && requiredCount > 0:
		return Result{Outcome: Beat, MaxBeatCount: best}
	case best == 0:
		return Result{Outcome: Discard, MaxBeatCount: best}
	default:
		return Result{Outcome: Partial, MaxBeatCount: best}
	}
}

// maxMatch returns the size of the largest matching of owner[idx:]
// against unused challenger cards.
func maxMatch(challenger, owner []card.Card, trump card.Suit, used []bool, idx int) int {
	if idx == len(owner) {
		return 0
	}

	// Option 1: leave owner[idx] unpaired.
	best := maxMatch(challenger, owner, trump, used, idx+1)

	// Option 2: pair owner[idx] with any beating, unused challenger card.
	for i, c := range challenger {
		if used[i] || !c.Beats(owner[idx], trump) {
			continue
		}
		used[i] = true
		if candidate := 1 + maxMatch(challenger, owner, trump, used, idx+1); candidate > best {
			best = candidate
		}
		used[i] = false
	}

	return best
}

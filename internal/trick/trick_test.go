package trick

import (
	"testing"

	"github.com/bura/server/internal/card"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate_FullBeat(t *testing.T) {
	challenger := []card.Card{card.New(card.Clubs, card.Ten), card.New(card.Clubs, card.Nine)}
	owner := []card.Card{card.New(card.Spades, card.Ace), card.New(card.Spades, card.King)}

	result := Evaluate(challenger, owner, card.Clubs, len(owner))

	assert.Equal(t, Beat, result.Outcome)
	assert.Equal(t, 2, result.MaxBeatCount)
}

func TestEvaluate_Partial(t *testing.T) {
	challenger := []card.Card{card.New(card.Clubs, card.Ten), card.New(card.Spades, card.Six)}
	owner := []card.Card{card.New(card.Spades, card.Queen), card.New(card.Spades, card.Jack)}

	result := Evaluate(challenger, owner, card.Clubs, len(owner))

	assert.Equal(t, Partial, result.Outcome)
	assert.Equal(t, 1, result.MaxBeatCount)
}

func TestEvaluate_Discard(t *testing.T) {
	challenger := []card.Card{card.New(card.Hearts, card.Six), card.New(card.Diamonds, card.Seven)}
	owner := []card.Card{card.New(card.Spades, card.Ace), card.New(card.Spades, card.King)}

	result := Evaluate(challenger, owner, card.Clubs, len(owner))

	assert.Equal(t, Discard, result.Outcome)
	assert.Equal(t, 0, result.MaxBeatCount)
}

func TestEvaluate_SingleCardBeat(t *testing.T) {
	challenger := []card.Card{card.New(card.Hearts, card.King)}
	owner := []card.Card{card.New(card.Hearts, card.Queen)}

	result := Evaluate(challenger, owner, card.Clubs, 1)

	assert.Equal(t, Beat, result.Outcome)
}

func TestEvaluate_TrumpBeatsNonTrump(t *testing.T) {
	challenger := []card.Card{card.New(card.Clubs, card.Six)}
	owner := []card.Card{card.New(card.Hearts, card.Ace)}

	result := Evaluate(challenger, owner, card.Clubs, 1)

	assert.Equal(t, Beat, result.Outcome)
}

func TestEvaluate_OffSuitNeverBeats(t *testing.T) {
	challenger := []card.Card{card.New(card.Diamonds, card.Ace)}
	owner := []card.Card{card.New(card.Hearts, card.Six)}

	result := Evaluate(challenger, owner, card.Clubs, 1)

	assert.Equal(t, Discard, result.Outcome)
}

func TestEvaluate_InjectivePairingDoesNotReuseCards(t *testing.T) {
	// Only one challenger card can beat both owner cards; matching must
	// not double-count it.
	challenger := []card.Card{card.New(card.Clubs, card.Ace)}
	owner := []card.Card{card.New(card.Hearts, card.Six), card.New(card.Diamonds, card.Seven)}

	result := Evaluate(challenger, owner, card.Clubs, len(owner))

	assert.Equal(t, Partial, result.Outcome)
	assert.Equal(t, 1, result.MaxBeatCount)
}

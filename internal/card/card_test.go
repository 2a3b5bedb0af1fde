package card

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankStrength_TenBelowJack(t *testing.T) {
	assert.Less(t, Ten.Strength(), Jack.Strength())
	assert.Equal(t, 10, Ten.Points())
	assert.Greater(t, Ten.Points(), King.Points())
}

func TestPoints_Table(t *testing.T) {
	cases := map[Rank]int{
		Ace: 11, Ten: 10, King: 4, Queen: 3, Jack: 2, Nine: 0, Eight: 0, Seven: 0, Six: 0,
	}
	for rank, want := range cases {
		assert.Equal(t, want, rank.Points(), rank.String())
	}
}

func TestBeats_SameSuitHigherRank(t *testing.T) {
	a := New(Spades, King)
	b := New(Spades, Queen)
	assert.True(t, a.Beats(b, Clubs))
	assert.False(t, b.Beats(a, Clubs))
}

func TestBeats_TrumpOverNonTrump(t *testing.T) {
	trumpSix := New(Clubs, Six)
	nonTrumpAce := New(Hearts, Ace)
	assert.True(t, trumpSix.Beats(nonTrumpAce, Clubs))
	assert.False(t, nonTrumpAce.Beats(trumpSix, Clubs))
}

func TestBeats_OffSuitNeverBeats(t *testing.T) {
	a := New(Diamonds, Ace)
	b := New(Hearts, Six)
	assert.False(t, a.Beats(b, Clubs))
}

func TestNewDeck_Has36UniqueCards(t *testing.T) {
	d := NewDeck(rand.New(rand.NewSource(1)))
	seen := make(map[Card]bool)
	for !d.Empty() {
		c, ok := d.Deal()
		require.True(t, ok)
		assert.False(t, seen[c], "duplicate card dealt: %v", c)
		seen[c] = true
	}
	assert.Len(t, seen, 36)
}

func TestNewDeck_TrumpCardDealtLast(t *testing.T) {
	d := NewDeck(rand.New(rand.NewSource(1)))
	trump := d.TrumpCard()

	var last Card
	for {
		c, ok := d.Deal()
		if !ok {
			break
		}
		last = c
	}
	assert.Equal(t, trump, last)
}

package card

import "math/rand"

// Deck is a shuffled 36-card Bura deck (ranks Six through Ace, all four
// suits). The last card of the shuffle is reserved as the trump card:
// it stays at the bottom of the deck and is the last card drawn during
// draw-up, per the trump-reveal rule.
type Deck struct {
	cards []Card
}

// NewDeck builds a fresh 36-card deck shuffled with rng and reserves
// its trump card. Callers supply rng so tests (and replay logging) can
// pin deal order deterministically.
func NewDeck(rng *rand.Rand) *Deck {
	cards := make([]Card, 0, 36)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, New(suit, rank))
		}
	}
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{cards: cards}
}

// TrumpCard returns the card reserved at the bottom of the deck without
// removing it. It leaves the deck with the final Deal; calling
// TrumpCard on an empty deck panics.
func (d *Deck) TrumpCard() Card {
	return d.cards[len(d.cards)-1]
}

// TrumpSuit returns the suit of the reserved trump card.
func (d *Deck) TrumpSuit() Suit {
	return d.TrumpCard().Suit
}

// Deal removes and returns the top card of the deck. The trump card is
// ordered last and so is only returned once every other card has been
// dealt.
func (d *Deck) Deal() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, true
}

// DealN deals up to n cards, stopping early if the deck runs out.
func (d *Deck) DealN(n int) []Card {
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		c, ok := d.Deal()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}

// Remaining returns the number of cards left in the deck, including the
// reserved trump card.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Empty reports whether the deck (including the trump card) has been
// fully dealt.
func (d *Deck) Empty() bool {
	return len(d.cards) == 0
}

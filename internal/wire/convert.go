package wire

import "github.com/bura/server/internal/card"

// ParseSuit maps a wire suit glyph/letter to card.Suit. Both the
// glyph form ("♠") and a plain letter form ("S") are accepted since
// clients may send either.
func ParseSuit(s string) (card.Suit, bool) {
	switch s {
	case "♠", "S", "s", "spades":
		return card.Spades, true
	case "♥", "H", "h", "hearts":
		return card.Hearts, true
	case "♦", "D", "d", "diamonds":
		return card.Diamonds, true
	case "♣", "C", "c", "clubs":
		return card.Clubs, true
	default:
		return 0, false
	}
}

// ToCard converts a wire CardData into a domain card.Card.
func ToCard(d CardData) (card.Card, bool) {
	suit, ok := ParseSuit(d.Suit)
	if !ok {
		return card.Card{}, false
	}
	rank := card.Rank(d.Rank)
	if rank < card.Six || rank > card.Ace {
		return card.Card{}, false
	}
	return card.New(suit, rank), true
}

// ToCards converts a slice of wire CardData into domain cards. ok is
// false if any element failed to parse.
func ToCards(data []CardData) ([]card.Card, bool) {
	out := make([]card.Card, 0, len(data))
	for _, d := range data {
		c, ok := ToCard(d)
		if !ok {
			return nil, false
		}
		out = append(out, c)
	}
	return out, true
}

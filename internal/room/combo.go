package room

import "github.com/bura/server/internal/card"

// DeclareCombination records a valid opening-of-trick declaration. It
// is only accepted before the first trick of the round has started and
// before the same player has declared the same combo this round.
func (r *Room) DeclareCombination(playerID string, combo Combo) error {
	defer r.lock()()
	r.tickLocked()

	if !r.roundActive {
		return NewError(ErrRoundNotActive)
	}
	if r.revealSnapshot != nil {
		return NewError(ErrAwaitReveal)
	}
	if r.currentTrick != nil || r.trickCounter > 0 {
		return NewError(ErrTrickAlreadyStarted)
	}
	if r.declared[playerID][combo] {
		return NewError(ErrCombinationAlreadyDeclared)
	}

	cards, err := r.matchComboLocked(playerID, combo)
	if err != nil {
		return err
	}

	r.declared[playerID][combo] = true
	r.announcements = append(r.announcements, Announcement{PlayerID: playerID, Combo: combo, Cards: cards})
	return nil
}

func (r *Room) matchComboLocked(playerID string, combo Combo) ([]card.Card, error) {
	hand := r.hands[playerID]

	switch combo {
	case ComboBura:
		trumpCards := filterBySuit(hand, r.trump)
		if len(trumpCards) < 4 {
			return nil, NewError(ErrCombinationCardsMissing)
		}
		return trumpCards[:4], nil

	case ComboMolodka:
		for _, suit := range card.Suits {
			if suit == r.trump {
				continue
			}
			suited := filterBySuit(hand, suit)
			if len(suited) >= 4 {
				return suited[:4], nil
			}
		}
		return nil, NewError(ErrCombinationCardsMissing)

	case ComboMoscow:
		aces := filterByRank(hand, card.Ace)
		if len(aces) < 3 {
			return nil, NewError(ErrCombinationCardsMissing)
		}
		hasTrumpAce := false
		for _, c := range aces {
			if c.Suit == r.trump {
				hasTrumpAce = true
				break
			}
		}
		if !hasTrumpAce {
			return nil, NewError(ErrCombinationCardsMissing)
		}
		return aces[:3], nil

	case ComboFourEnds:
		if !r.Config.EnableFourEnds {
			return nil, NewError(ErrCombinationNotEnabled)
		}
		aces := filterByRank(hand, card.Ace)
		if len(aces) >= 4 {
			return aces[:4], nil
		}
		tens := filterByRank(hand, card.Ten)
		if len(tens) >= 4 {
			return tens[:4], nil
		}
		return nil, NewError(ErrCombinationCardsMissing)

	default:
		return nil, NewError(ErrUnknownCombination)
	}
}

func filterBySuit(cards []card.Card, suit card.Suit) []card.Card {
	var out []card.Card
	for _, c := range cards {
		if c.Suit == suit {
			out = append(out, c)
		}
	}
	return out
}

func filterByRank(cards []card.Card, rank card.Rank) []card.Card {
	var out []card.Card
	for _, c := range cards {
		if c.Rank == rank {
			out = append(out, c)
		}
	}
	return out
}

package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bura/server/internal/card"
)

func TestPlayCardsData_ResolvedCards_PromotesLegacyCard(t *testing.T) {
	data := PlayCardsData{Card: &CardData{Suit: "S", Rank: 14}}
	resolved := data.ResolvedCards()
	require.Len(t, resolved, 1)
	assert.Equal(t, "S", resolved[0].Suit)
}

func TestPlayCardsData_ResolvedCards_PrefersCardsSlice(t *testing.T) {
	data := PlayCardsData{
		Cards: []CardData{{Suit: "H", Rank: 6}},
		Card:  &CardData{Suit: "S", Rank: 14},
	}
	resolved := data.ResolvedCards()
	require.Len(t, resolved, 1)
	assert.Equal(t, "H", resolved[0].Suit)
}

func TestParseSuit(t *testing.T) {
	suit, ok := ParseSuit("♣")
	require.True(t, ok)
	assert.Equal(t, card.Clubs, suit)

	_, ok = ParseSuit("X")
	assert.False(t, ok)
}

func TestPlayCardsData_DecodesFromFlatTopLevelMessage(t *testing.T) {
	raw := []byte(`{"type":"play","player_id":"p1","cards":[{"suit":"S","rank":14}]}`)

	var data PlayCardsData
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, "p1", data.PlayerID)
	require.Len(t, data.ResolvedCards(), 1)
	assert.Equal(t, "S", data.ResolvedCards()[0].Suit)
}

func TestNewStateFrame_WrapsPayload(t *testing.T) {
	out, err := json.Marshal(NewStateFrame(map[string]int{"deckSize": 5}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"state","payload":{"deckSize":5}}`, string(out))
}

func TestNewErrorFrame_FlatErrorField(t *testing.T) {
	out, err := json.Marshal(NewErrorFrame("cardNotInHand"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","error":"cardNotInHand"}`, string(out))
}

func TestNewEarlyTurnGrantedFrame_Flat(t *testing.T) {
	out, err := json.Marshal(NewEarlyTurnGrantedFrame("p1", "♣", []string{"clubs:ace"}, []int{14}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"EARLY_TURN_GRANTED","playerId":"p1","suit":"♣","cardIds":["clubs:ace"],"ranks":[14]}`, string(out))
}

func TestToCards(t *testing.T) {
	cards, ok := ToCards([]CardData{{Suit: "S", Rank: 14}, {Suit: "H", Rank: 6}})
	require.True(t, ok)
	require.Len(t, cards, 2)
	assert.Equal(t, card.New(card.Spades, card.Ace), cards[0])

	_, ok = ToCards([]CardData{{Suit: "bad", Rank: 6}})
	assert.False(t, ok)
}

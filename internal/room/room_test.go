package room

import (
	"testing"
	"time"

	"github.com/bura/server/internal/card"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoom(t *testing.T) (*Room, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	cfg := DefaultTableConfig()
	cfg.MaxPlayers = 2
	cfg.TurnTimeoutSec = 30
	r := New("room-1", "Test Room", "classic_2p", cfg, clock, nil)
	return r, clock
}

func TestAddPlayer_IdempotentAndFull(t *testing.T) {
	r, _ := newTestRoom(t)

	require.NoError(t, r.AddPlayer("a", "Alice", ""))
	require.NoError(t, r.AddPlayer("a", "Alice", "")) // idempotent
	assert.Equal(t, 1, r.PlayerCount())

	require.NoError(t, r.AddPlayer("b", "Bob", ""))
	err := r.AddPlayer("c", "Carol", "")
	require.Error(t, err)
	assert.Equal(t, ErrRoomFull, err.(*Error).Kind)
}

func TestAddPlayer_RejectedAfterStart(t *testing.T) {
	r, _ := newTestRoom(t)
	require.NoError(t, r.AddPlayer("a", "Alice", ""))
	require.NoError(t, r.AddPlayer("b", "Bob", ""))
	require.NoError(t, r.Start())

	err := r.AddPlayer("c", "Carol", "")
	require.Error(t, err)
	assert.Equal(t, ErrGameAlreadyStarted, err.(*Error).Kind)
}

func TestRemovePlayer_NoOpForNonMember(t *testing.T) {
	r, _ := newTestRoom(t)
	require.NoError(t, r.AddPlayer("a", "Alice", ""))
	r.RemovePlayer("ghost")
	assert.Equal(t, 1, r.PlayerCount())
}

func TestRemovePlayer_EmptyRoomClearsStarted(t *testing.T) {
	r, _ := newTestRoom(t)
	require.NoError(t, r.AddPlayer("a", "Alice", ""))
	require.NoError(t, r.AddPlayer("b", "Bob", ""))
	require.NoError(t, r.Start())

	r.RemovePlayer("a")
	r.RemovePlayer("b")
	assert.False(t, r.Started())
}

func TestSetDisconnected_ReflectedInSnapshotThenCleared(t *testing.T) {
	r, _ := newTestRoom(t)
	require.NoError(t, r.AddPlayer("a", "Alice", ""))
	require.NoError(t, r.AddPlayer("b", "Bob", ""))
	require.NoError(t, r.Start())

	r.SetDisconnected("a", true)

	snap := r.ToState("b")
	var alice PlayerView
	for _, p := range snap.Players {
		if p.ID == "a" {
			alice = p
		}
	}
	assert.True(t, alice.Disconnected)

	r.SetDisconnected("a", false)
	snap = r.ToState("b")
	for _, p := range snap.Players {
		if p.ID == "a" {
			alice = p
		}
	}
	assert.False(t, alice.Disconnected)
}

// setHand is a test-only helper that reaches past the lock to pin a
// deterministic hand for scenario tests.
func setHand(r *Room, playerID string, cards []card.Card) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hands[playerID] = cards
}

func setTrump(r *Room, suit card.Suit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trump = suit
}

// S1 — Two-player full-trick win with trumps.
func TestScenario_FullTrickWinWithTrump(t *testing.T) {
	r, _ := newTestRoom(t)
	require.NoError(t, r.AddPlayer("A", "Alice", ""))
	require.NoError(t, r.AddPlayer("B", "Bob", ""))
	require.NoError(t, r.Start())
	setTrump(r, card.Clubs)

	r.mu.Lock()
	r.turnIndex = 0
	r.mu.Unlock()

	setHand(r, "A", []card.Card{card.New(card.Spades, card.Ace), card.New(card.Spades, card.King), card.New(card.Diamonds, card.Six)})
	setHand(r, "B", []card.Card{card.New(card.Clubs, card.Ten), card.New(card.Clubs, card.Nine), card.New(card.Diamonds, card.Seven)})

	require.NoError(t, r.PlayCards("A", []card.Card{card.New(card.Spades, card.Ace), card.New(card.Spades, card.King)}, nil, nil))
	require.NoError(t, r.PlayCards("B", []card.Card{card.New(card.Clubs, card.Ten), card.New(card.Clubs, card.Nine)}, nil, nil))

	r.mu.Lock()
	assert.Equal(t, "B", r.lastTrickWinnerID)
	assert.Len(t, r.takenPiles["B"], 4)
	r.mu.Unlock()
}

// S2 — Partial response stays with the lead in two-player mode.
func TestScenario_PartialResponse(t *testing.T) {
	r, _ := newTestRoom(t)
	require.NoError(t, r.AddPlayer("A", "Alice", ""))
	require.NoError(t, r.AddPlayer("B", "Bob", ""))
	require.NoError(t, r.Start())
	setTrump(r, card.Clubs)

	r.mu.Lock()
	r.turnIndex = 0
	r.mu.Unlock()

	setHand(r, "A", []card.Card{card.New(card.Spades, card.Queen), card.New(card.Spades, card.Jack), card.New(card.Diamonds, card.Six)})
	setHand(r, "B", []card.Card{card.New(card.Clubs, card.Ten), card.New(card.Spades, card.Six), card.New(card.Diamonds, card.Seven)})

	require.NoError(t, r.PlayCards("A", []card.Card{card.New(card.Spades, card.Queen), card.New(card.Spades, card.Jack)}, nil, nil))
	require.NoError(t, r.PlayCards("B", []card.Card{card.New(card.Clubs, card.Ten), card.New(card.Spades, card.Six)}, nil, nil))

	r.mu.Lock()
	assert.Equal(t, "A", r.lastTrickWinnerID)
	assert.Len(t, r.takenPiles["A"], 4)
	r.mu.Unlock()
}

// S3 — Round-end penalties, zero-points rule.
func TestScenario_RoundEndPenalties(t *testing.T) {
	assert.Equal(t, 21, card.Ace.Points()+card.Ten.Points())

	penalties, leaders := computePenalties([]string{"A", "B"}, map[string]int{"A": 21, "B": 0})
	assert.Equal(t, []string{"A"}, leaders)
	assert.Equal(t, 0, penalties["A"])
	assert.Equal(t, 6, penalties["B"])
}

// S4 — Declare bura then a second declaration fails.
func TestScenario_DeclareBuraThenDuplicate(t *testing.T) {
	r, _ := newTestRoom(t)
	require.NoError(t, r.AddPlayer("A", "Alice", ""))
	require.NoError(t, r.AddPlayer("B", "Bob", ""))
	require.NoError(t, r.Start())
	setTrump(r, card.Clubs)
	setHand(r, "A", []card.Card{
		card.New(card.Clubs, card.Ace), card.New(card.Clubs, card.King),
		card.New(card.Clubs, card.Queen), card.New(card.Clubs, card.Jack),
	})

	require.NoError(t, r.DeclareCombination("A", ComboBura))

	err := r.DeclareCombination("A", ComboBura)
	require.Error(t, err)
	assert.Equal(t, ErrCombinationAlreadyDeclared, err.(*Error).Kind)
}

// S5 — Early-turn grant.
func TestScenario_EarlyTurnGrant(t *testing.T) {
	r, _ := newTestRoom(t)
	require.NoError(t, r.AddPlayer("A", "Alice", ""))
	require.NoError(t, r.AddPlayer("B", "Bob", ""))
	require.NoError(t, r.Start())

	r.mu.Lock()
	r.turnIndex = r.seatOf("B")
	r.mu.Unlock()

	setHand(r, "A", []card.Card{
		card.New(card.Hearts, card.Ace), card.New(card.Hearts, card.Ace),
		card.New(card.Hearts, card.Ten), card.New(card.Hearts, card.Nine),
	})

	grant, err := r.RequestEarlyTurn("A", card.Hearts, nil)
	require.NoError(t, err)
	assert.Equal(t, "A", grant.PlayerID)

	r.mu.Lock()
	assert.Equal(t, "A", r.currentPlayer().ID)
	r.mu.Unlock()
}

// S6 — Reveal window rejects intents and then advances.
func TestScenario_RevealWindow(t *testing.T) {
	r, clock := newTestRoom(t)
	require.NoError(t, r.AddPlayer("A", "Alice", ""))
	require.NoError(t, r.AddPlayer("B", "Bob", ""))
	require.NoError(t, r.Start())
	setTrump(r, card.Clubs)

	r.mu.Lock()
	r.turnIndex = 0
	r.mu.Unlock()
	setHand(r, "A", []card.Card{card.New(card.Spades, card.Ace), card.New(card.Diamonds, card.Six), card.New(card.Hearts, card.Six)})
	setHand(r, "B", []card.Card{card.New(card.Diamonds, card.Seven), card.New(card.Hearts, card.Seven), card.New(card.Clubs, card.Six)})

	require.NoError(t, r.PlayCards("A", []card.Card{card.New(card.Spades, card.Ace)}, nil, nil))
	require.NoError(t, r.PlayCards("B", []card.Card{card.New(card.Diamonds, card.Seven)}, nil, nil))

	err := r.PlayCards("B", []card.Card{card.New(card.Hearts, card.Seven)}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, ErrAwaitReveal, err.(*Error).Kind)

	clock.Advance(RevealDelay + time.Second)
	r.ToState("A") // ticks the reveal probe

	r.mu.Lock()
	assert.Nil(t, r.revealSnapshot)
	r.mu.Unlock()
}

func TestValidFourCardThrow(t *testing.T) {
	cases := []struct {
		name  string
		cards []card.Card
		want  bool
	}{
		{"same suit", []card.Card{card.New(card.Spades, card.Six), card.New(card.Spades, card.Seven), card.New(card.Spades, card.Eight), card.New(card.Spades, card.Nine)}, true},
		{"four aces", []card.Card{card.New(card.Spades, card.Ace), card.New(card.Hearts, card.Ace), card.New(card.Diamonds, card.Ace), card.New(card.Clubs, card.Ace)}, true},
		{"four tens", []card.Card{card.New(card.Spades, card.Ten), card.New(card.Hearts, card.Ten), card.New(card.Diamonds, card.Ten), card.New(card.Clubs, card.Ten)}, true},
		{"mixed aces and tens", []card.Card{card.New(card.Spades, card.Ace), card.New(card.Hearts, card.Ace), card.New(card.Diamonds, card.Ten), card.New(card.Clubs, card.Ten)}, true},
		{"invalid mix", []card.Card{card.New(card.Spades, card.Ace), card.New(card.Hearts, card.King), card.New(card.Diamonds, card.Ten), card.New(card.Clubs, card.Ten)}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, validFourCardThrow(c.cards))
		})
	}
}

package room

import (
	"math/rand"
	"sync"
	"time"

	"github.com/bura/server/internal/card"
	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// MatchEndSink is invoked exactly once per match, when scores cross
// the penalty threshold. It is the only persistence seam the engine
// exposes; persistent storage itself is out of scope.
type MatchEndSink interface {
	OnMatchEnd(matchID, roomID, variantKey, winnerID string, participants []string, totalRounds int)
}

// Room is a single table's authoritative game engine. Every exported
// method locks mu for its full body, including ToState, since
// snapshotting also runs the lazy checkTimeoutLocked/checkRevealLocked probes
// and is therefore a writer too.
type Room struct {
	mu sync.Mutex

	ID         string
	Name       string
	VariantKey string
	Config     TableConfig

	clock quartz.Clock
	rng   *rand.Rand
	sink  MatchEndSink

	players      []*Player
	hands        map[string][]card.Card
	takenPiles   map[string][]card.Card
	scores       map[string]int
	gameWins     map[string]int
	declared     map[string]map[Combo]bool
	disconnected map[string]bool

	started     bool
	roundActive bool
	dealerIndex int
	roundID     int
	trickCounter int

	deck         *card.Deck
	trump        card.Suit
	trumpCard    card.Card
	discardPile  []card.Card
	announcements []Announcement

	currentTrick   *Trick
	revealSnapshot *Trick

	turnIndex          int
	turnDeadline       time.Time
	lastTrickWinnerID  string
	pendingTurnResume  bool
	pendingRoundStart  bool

	matchID   string
	matchOver bool
	winners   []string
	losers    []string
	winnerID  string
}

// New constructs an empty, unstarted room. clock lets callers (and
// tests) control time deterministically via quartz.Mock; production
// callers pass quartz.NewReal().
func New(id, name, variantKey string, config TableConfig, clock quartz.Clock, sink MatchEndSink) *Room {
	return &Room{
		ID:         id,
		Name:       name,
		VariantKey: variantKey,
		Config:     config,
		clock:      clock,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		sink:       sink,
		hands:        make(map[string][]card.Card),
		takenPiles:   make(map[string][]card.Card),
		scores:       make(map[string]int),
		gameWins:     make(map[string]int),
		declared:     make(map[string]map[Combo]bool),
		disconnected: make(map[string]bool),
	}
}

// SetDisconnected marks playerID's connection state for viewer
// projections. The Hub calls this on detach/reattach of a started
// match's session; it never affects turn order or game state.
func (r *Room) SetDisconnected(playerID string, disconnected bool) {
	defer r.lock()()
	if disconnected {
		r.disconnected[playerID] = true
	} else {
		delete(r.disconnected, playerID)
	}
}

func (r *Room) lock() func() {
	r.mu.Lock()
	return r.mu.Unlock
}

// AddPlayer seats a new player. Idempotent on an existing id.
func (r *Room) AddPlayer(id, name, avatar string) error {
	defer r.lock()()

	for _, p := range r.players {
		if p.ID == id {
			return nil
		}
	}
	if r.started {
		return NewError(ErrGameAlreadyStarted)
	}
	if len(r.players) >= r.Config.MaxPlayers {
		return NewError(ErrRoomFull)
	}

	seat := len(r.players)
	r.players = append(r.players, &Player{ID: id, Name: name, Avatar: avatar, Seat: seat})
	r.hands[id] = nil
	r.takenPiles[id] = nil
	r.scores[id] = 0
	r.gameWins[id] = 0
	r.declared[id] = make(map[Combo]bool)
	return nil
}

// RemovePlayer removes a player from the roster and every per-player
// map. A no-op if the player is not a member.
func (r *Room) RemovePlayer(id string) {
	defer r.lock()()
	r.removePlayerLocked(id)
}

func (r *Room) removePlayerLocked(id string) {
	idx := -1
	for i, p := range r.players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	r.players = append(r.players[:idx], r.players[idx+1:]...)
	for i, p := range r.players {
		p.Seat = i
	}
	delete(r.hands, id)
	delete(r.takenPiles, id)
	delete(r.scores, id)
	delete(r.gameWins, id)
	delete(r.declared, id)
	delete(r.disconnected, id)

	if len(r.players) == 0 {
		r.started = false
		r.roundActive = false
		return
	}
	if r.turnIndex >= len(r.players) {
		r.turnIndex = len(r.players) - 1
	}
}

// PlayerCount returns the number of seated players.
func (r *Room) PlayerCount() int {
	defer r.lock()()
	return len(r.players)
}

// Started reports whether the match has begun.
func (r *Room) Started() bool {
	defer r.lock()()
	return r.started
}

// Start freezes the roster and deals the first round. Requires at
// least the variant's minimum players and at least two overall.
func (r *Room) Start() error {
	defer r.lock()()

	min := 2
	if v, ok := Variants[r.VariantKey]; ok && v.MinPlayers > min {
		min = v.MinPlayers
	}
	if len(r.players) < min {
		return NewError(ErrNotEnoughPlayers)
	}

	r.matchID = uuid.NewString()
	r.started = true
	r.matchOver = false
	r.winners = nil
	r.losers = nil
	r.winnerID = ""
	r.roundID = 0
	for _, p := range r.players {
		r.scores[p.ID] = 0
		r.gameWins[p.ID] = 0
	}
	r.dealerIndex = r.rng.Intn(len(r.players))

	r.startNewRoundLocked(true)
	return nil
}

// startNewRoundLocked builds a fresh deck, deals hands and sets the
// first leader. initial selects the round-1 leader rule; subsequent
// rounds lead from the previous round's last trick winner.
func (r *Room) startNewRoundLocked(initial bool) {
	r.roundID++
	r.roundActive = true
	r.deck = card.NewDeck(r.rng)
	r.trumpCard = r.deck.TrumpCard()
	r.trump = r.trumpCard.Suit
	r.discardPile = nil
	r.announcements = nil
	r.currentTrick = nil
	r.revealSnapshot = nil
	r.pendingTurnResume = false
	r.pendingRoundStart = false
	r.trickCounter = 0
	for _, p := range r.players {
		r.hands[p.ID] = nil
		r.takenPiles[p.ID] = nil
		r.declared[p.ID] = make(map[Combo]bool)
	}

	n := len(r.players)
	for pass := 0; pass < 4; pass++ {
		for i := 0; i < n; i++ {
			c, ok := r.deck.Deal()
			if !ok {
				break
			}
			r.hands[r.players[i].ID] = append(r.hands[r.players[i].ID], c)
		}
	}

	var leaderSeat int
	if initial {
		leaderSeat = (r.dealerIndex + 1) % n
	} else {
		leaderSeat = r.seatOf(r.lastTrickWinnerID)
	}
	r.turnIndex = leaderSeat
	r.refreshDeadlineLocked()
}

func (r *Room) refreshDeadlineLocked() {
	r.turnDeadline = r.clock.Now().Add(time.Duration(r.Config.TurnTimeoutSec) * time.Second)
}

func (r *Room) seatOf(playerID string) int {
	for _, p := range r.players {
		if p.ID == playerID {
			return p.Seat
		}
	}
	return 0
}

func (r *Room) playerAtSeat(seat int) *Player {
	for _, p := range r.players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

func (r *Room) currentPlayer() *Player {
	return r.playerAtSeat(r.turnIndex)
}

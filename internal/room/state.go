package room

import "github.com/bura/server/internal/card"

// CardView is the wire-facing form of a card.
type CardView struct {
	ID   string `json:"id"`
	Suit string `json:"suit"`
	Rank int    `json:"rank"`
}

func toCardView(c card.Card) CardView {
	return CardView{ID: c.ID(), Suit: c.Suit.String(), Rank: int(c.Rank)}
}

func toCardViews(cards []card.Card) []CardView {
	if cards == nil {
		return nil
	}
	out := make([]CardView, len(cards))
	for i, c := range cards {
		out[i] = toCardView(c)
	}
	return out
}

// PlayerView is the roster entry for one seated player.
type PlayerView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar,omitempty"`
	Seat         int    `json:"seat"`
	HandCount    int    `json:"handCount"`
	TakenCount   int    `json:"takenCount"`
	Disconnected bool   `json:"disconnected"`
}

// AnnouncementView is the wire form of a combination declaration.
type AnnouncementView struct {
	PlayerID string     `json:"playerId"`
	Combo    string     `json:"combo"`
	Cards    []CardView `json:"cards"`
}

// PlayView is one play within the current or most recently closed
// trick, with card visibility already applied for the requesting
// viewer.
type PlayView struct {
	PlayerID string     `json:"playerId"`
	Seat     int        `json:"seat"`
	Outcome  string     `json:"outcome"`
	IsOwner  bool       `json:"isOwner"`
	Count    int        `json:"count"`
	Cards    []CardView `json:"cards,omitempty"`
}

// BoardView is the trick-in-flight or just-closed view of the table.
type BoardView struct {
	TrickIndex      int        `json:"trickIndex"`
	AttackerCards   []CardView `json:"attackerCards,omitempty"`
	DefenderCards   []CardView `json:"defenderCards,omitempty"`
	Plays           []PlayView `json:"plays"`
	Revealing       bool       `json:"revealing"`
	RevealUntilTsMs int64      `json:"revealUntilTs,omitempty"`
}

// SeatView summarizes per-seat turn/timer state.
type SeatView struct {
	Seat       int    `json:"seat"`
	PlayerID   string `json:"playerId"`
	IsTurn     bool   `json:"isTurn"`
	TimeLeftMs int64  `json:"timeLeftMs,omitempty"`
}

// TableConfigView is the wire form of TableConfig.
type TableConfigView struct {
	MaxPlayers        int    `json:"maxPlayers"`
	DiscardVisibility string `json:"discardVisibility"`
	EnableFourEnds    bool   `json:"enableFourEnds"`
	TurnTimeoutSec    int    `json:"turnTimeoutSec"`
}

// Snapshot is the full viewer-scoped projection returned by ToState.
type Snapshot struct {
	RoomID     string          `json:"roomId"`
	Name       string          `json:"name"`
	VariantKey string          `json:"variantKey"`
	Config     TableConfigView `json:"config"`

	Players []PlayerView `json:"players"`
	Seats   []SeatView   `json:"seats"`

	Hand []CardView `json:"hand"`

	DeckSize  int      `json:"deckSize"`
	Trump     string   `json:"trump,omitempty"`
	TrumpCard CardView `json:"trumpCard,omitempty"`

	Announcements []AnnouncementView `json:"announcements"`
	DiscardPile   []CardView         `json:"discardPile,omitempty"`
	Board         *BoardView         `json:"board,omitempty"`

	Scores   map[string]int `json:"scores"`
	GameWins map[string]int `json:"gameWins"`

	Started     bool `json:"started"`
	RoundActive bool `json:"roundActive"`
	RoundNumber int  `json:"roundNumber"`
	TrickNumber int  `json:"trickNumber"`

	TurnPlayerID   string `json:"turnPlayerId,omitempty"`
	TurnDeadlineTs int64  `json:"turnDeadlineTs,omitempty"`

	MatchOver bool     `json:"matchOver"`
	Winners   []string `json:"winners,omitempty"`
	Losers    []string `json:"losers,omitempty"`
	WinnerID  string   `json:"winnerId,omitempty"`
}

// ToState runs the lazy timeout/reveal probes then produces a
// projection scoped to viewerID: the viewer's own hand is shown in
// full, every other hand is shown only as a count. Snapshotting is a
// writer, not just a reader, because the probes it runs can mutate
// round/match state.
func (r *Room) ToState(viewerID string) Snapshot {
	defer r.lock()()
	r.tickLocked()

	players := make([]PlayerView, len(r.players))
	for i, p := range r.players {
		players[i] = PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Avatar:       p.Avatar,
			Seat:         p.Seat,
			HandCount:    len(r.hands[p.ID]),
			TakenCount:   len(r.takenPiles[p.ID]),
			Disconnected: r.disconnected[p.ID],
		}
	}

	seats := make([]SeatView, len(r.players))
	for i, p := range r.players {
		isTurn := r.roundActive && r.revealSnapshot == nil && p.Seat == r.turnIndex
		var timeLeft int64
		if isTurn && !r.turnDeadline.IsZero() {
			if d := r.turnDeadline.Sub(r.clock.Now()); d > 0 {
				timeLeft = d.Milliseconds()
			}
		}
		seats[i] = SeatView{Seat: p.Seat, PlayerID: p.ID, IsTurn: isTurn, TimeLeftMs: timeLeft}
	}

	announcements := make([]AnnouncementView, len(r.announcements))
	for i, a := range r.announcements {
		announcements[i] = AnnouncementView{PlayerID: a.PlayerID, Combo: string(a.Combo), Cards: toCardViews(a.Cards)}
	}

	snap := Snapshot{
		RoomID:     r.ID,
		Name:       r.Name,
		VariantKey: r.VariantKey,
		Config: TableConfigView{
			MaxPlayers:        r.Config.MaxPlayers,
			DiscardVisibility: string(r.Config.DiscardVisibility),
			EnableFourEnds:    r.Config.EnableFourEnds,
			TurnTimeoutSec:    r.Config.TurnTimeoutSec,
		},
		Players:       players,
		Seats:         seats,
		Hand:          toCardViews(r.hands[viewerID]),
		Announcements: announcements,
		Scores:        copyIntMap(r.scores),
		GameWins:      copyIntMap(r.gameWins),
		Started:       r.started,
		RoundActive:   r.roundActive,
		RoundNumber:   r.roundID,
		TrickNumber:   r.trickCounter,
		MatchOver:     r.matchOver,
		Winners:       r.winners,
		Losers:        r.losers,
		WinnerID:      r.winnerID,
	}

	if r.deck != nil {
		snap.DeckSize = r.deck.Remaining()
		if r.started {
			snap.Trump = r.trump.String()
			snap.TrumpCard = toCardView(r.trumpCard)
		}
	}

	if r.Config.DiscardVisibility == Open {
		snap.DiscardPile = toCardViews(r.discardPile)
	}

	if r.roundActive && r.revealSnapshot == nil {
		snap.TurnPlayerID = r.currentPlayer().idOrEmpty()
		if !r.turnDeadline.IsZero() {
			snap.TurnDeadlineTs = r.turnDeadline.UnixMilli()
		}
	}

	if t := r.currentTrick; t != nil {
		snap.Board = r.buildBoardView(t, viewerID, false)
	} else if t := r.revealSnapshot; t != nil {
		snap.Board = r.buildBoardView(t, viewerID, true)
	}

	return snap
}

func (p *Player) idOrEmpty() string {
	if p == nil {
		return ""
	}
	return p.ID
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// buildBoardView applies the card-visibility rule: lead and beating
// plays are always face-up; partial/discard plays are face-up to the
// owning player and otherwise follow discardVisibility.
func (r *Room) buildBoardView(t *Trick, viewerID string, revealing bool) *BoardView {
	plays := make([]PlayView, len(t.Plays))
	for i, p := range t.Plays {
		visible := p.Outcome == OutcomeLead || p.Outcome == OutcomeBeat ||
			p.PlayerID == viewerID || r.Config.DiscardVisibility == Open

		pv := PlayView{PlayerID: p.PlayerID, Seat: p.Seat, Outcome: string(p.Outcome), IsOwner: p.IsOwner, Count: len(p.Cards)}
		if visible {
			pv.Cards = toCardViews(p.Cards)
		}
		plays[i] = pv
	}

	var attacker, defender []CardView
	if len(plays) > 0 {
		attacker = plays[0].Cards
	}
	if len(plays) > 1 {
		defender = plays[len(plays)-1].Cards
	}

	board := &BoardView{
		TrickIndex:    t.TrickIndex,
		AttackerCards: attacker,
		DefenderCards: defender,
		Plays:         plays,
		Revealing:     revealing,
	}
	if revealing {
		board.RevealUntilTsMs = t.RevealUntil.UnixMilli()
	}
	return board
}

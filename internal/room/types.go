// Package room implements the Bura table state machine: lobby
// membership, match and round lifecycle, trick play, combination
// declarations, early-turn requests, penalty scoring and the
// viewer-scoped state projection. Every exported method locks the
// Room's own mutex for its full body, grounded on the teacher's
// game.Table as the per-unit authoritative state struct
// (internal/game/table.go) generalized to the finer per-room locking
// this engine's concurrency model requires.
package room

import (
	"time"

	"github.com/bura/server/internal/card"
)

// RevealDelay is the fixed reveal window after a trick closes during
// which the board stays visible and no intents are accepted.
const RevealDelay = 5 * time.Second

// DisconnectGrace is how long a disconnected player's seat is held
// before the Hub's reaper removes them. Declared here because it is
// part of the same lobby-facing contract as TableConfig; the Hub
// enforces it.
const DisconnectGrace = 30 * time.Second

// DiscardVisibility controls whether non-owning viewers can see
// partial/discard plays and the discard pile.
type DiscardVisibility string

const (
	Open     DiscardVisibility = "open"
	FaceDown DiscardVisibility = "faceDown"
)

// TableConfig is the immutable per-room configuration chosen at
// create time.
type TableConfig struct {
	MaxPlayers        int
	DiscardVisibility DiscardVisibility
	EnableFourEnds    bool
	TurnTimeoutSec    int
}

// DefaultTableConfig returns sane defaults for a 4-player open table.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		MaxPlayers:        4,
		DiscardVisibility: Open,
		EnableFourEnds:    false,
		TurnTimeoutSec:    40,
	}
}

// Player is a seated room member.
type Player struct {
	ID     string
	Name   string
	Avatar string
	Seat   int
}

// Combo is a recognized opening-of-trick declaration.
type Combo string

const (
	ComboBura     Combo = "bura"
	ComboMolodka  Combo = "molodka"
	ComboMoscow   Combo = "moscow"
	ComboFourEnds Combo = "four_ends"
)

// Announcement records one successful combination declaration.
type Announcement struct {
	PlayerID string
	Combo    Combo
	Cards    []card.Card
}

// PlayOutcome classifies one play within a trick.
type PlayOutcome string

const (
	OutcomeLead    PlayOutcome = "lead"
	OutcomeBeat    PlayOutcome = "beat"
	OutcomePartial PlayOutcome = "partial"
	OutcomeDiscard PlayOutcome = "discard"
)

// Play is one player's contribution to a trick.
type Play struct {
	PlayerID string
	Seat     int
	Cards    []card.Card
	Outcome  PlayOutcome
	IsOwner  bool
}

// Trick is the in-flight (or most recently closed) exchange of cards.
type Trick struct {
	TrickIndex    int
	LeaderID      string
	LeaderSeat    int
	RequiredCount int
	OwnerID       string
	OwnerSeat     int
	OwnerCards    []card.Card
	Plays         []Play

	// RevealUntil is non-zero only once the trick has closed and is
	// held as the reveal snapshot.
	RevealUntil time.Time
}

// Variant describes a selectable room preset.
type Variant struct {
	Key        string
	Title      string
	MinPlayers int
	MaxPlayers int
}

// Variants is the supplemented catalog of selectable room presets,
// grounded on original_source/backend/game.py's VARIANTS table.
var Variants = map[string]Variant{
	"classic_2p": {Key: "classic_2p", Title: "Classic (2 players)", MinPlayers: 2, MaxPlayers: 2},
	"classic_3p": {Key: "classic_3p", Title: "Classic (3 players)", MinPlayers: 2, MaxPlayers: 3},
	"with_sevens": {Key: "with_sevens", Title: "With sevens", MinPlayers: 2, MaxPlayers: 4},
	"with_draw":  {Key: "with_draw", Title: "With draw-up", MinPlayers: 2, MaxPlayers: 4},
}

// DefaultVariantKey is used when a room is created without an explicit
// variant selection.
const DefaultVariantKey = "with_draw"

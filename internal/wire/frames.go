// Package wire defines the duplex JSON frame schemas exchanged with a
// session: inbound intents (play, declare, request_early_turn), whose
// fields sit flat on the message's top level, and outbound
// notifications (state, error, EARLY_TURN_GRANTED, rooms), each with
// its own documented shape. Grounded on the teacher's
// Message{Type, Data} envelope and per-type payload structs
// (internal/server/message.go), repurposed from poker actions to Bura
// intents and reshaped to match ground-truth backend/main.py's wire
// contract.
package wire

import (
	"encoding/json"
)

// FrameType identifies the shape of Data in an inbound or outbound
// Frame.
type FrameType string

const (
	// Inbound, sent by a session on /room/{roomId}.
	FramePlay             FrameType = "play"
	FramePlayCards        FrameType = "play_cards"
	FrameDeclare          FrameType = "declare"
	FrameRequestEarlyTurn FrameType = "request_early_turn"

	// Outbound, sent to one or every session in a room.
	FrameState            FrameType = "state"
	FrameError            FrameType = "error"
	FrameEarlyTurnGranted FrameType = "EARLY_TURN_GRANTED"

	// Outbound, sent on the lobby channel.
	FrameRooms FrameType = "rooms"
)

// Frame identifies one inbound message's type, carrying the entire
// raw message alongside it. The wire protocol flattens intent fields
// onto the message's top level rather than nesting them under a
// "data" key — ground-truth backend/main.py reads flat dict keys
// (data["player_id"], data["card"]) straight off the parsed message —
// so Data is decoded a second time, directly into the intent's own
// payload struct, rather than unwrapped from a nested field.
type Frame struct {
	Type FrameType
	Data json.RawMessage
}

// outboundPayloadFrame is the envelope used for notifications whose
// body is wrapped under "payload": state and rooms, matching
// ground-truth backend/main.py's broadcast_room/broadcast_lobby.
type outboundPayloadFrame struct {
	Type    FrameType `json:"type"`
	Payload any       `json:"payload"`
}

// NewStateFrame builds the outbound {"type":"state","payload":...} frame.
func NewStateFrame(snapshot any) any {
	return outboundPayloadFrame{Type: FrameState, Payload: snapshot}
}

// NewRoomsFrame builds the outbound {"type":"rooms","payload":[...]}
// frame, payload being the room list directly (not wrapped further).
func NewRoomsFrame(rooms []RoomSummaryData) any {
	return outboundPayloadFrame{Type: FrameRooms, Payload: rooms}
}

// ErrorFrame is the outbound shape for FrameError: {"type":"error","error":"<kind>"}.
type ErrorFrame struct {
	Type  FrameType `json:"type"`
	Error string    `json:"error"`
}

// NewErrorFrame builds an ErrorFrame for kind.
func NewErrorFrame(kind string) ErrorFrame {
	return ErrorFrame{Type: FrameError, Error: kind}
}

// EarlyTurnGrantedFrame is the outbound shape for
// FrameEarlyTurnGranted, flat at the top level, emitted to every
// session in the room before the following state broadcast.
type EarlyTurnGrantedFrame struct {
	Type     FrameType `json:"type"`
	PlayerID string    `json:"playerId"`
	Suit     string    `json:"suit"`
	CardIDs  []string  `json:"cardIds"`
	Ranks    []int     `json:"ranks"`
}

// NewEarlyTurnGrantedFrame builds an EarlyTurnGrantedFrame.
func NewEarlyTurnGrantedFrame(playerID, suit string, cardIDs []string, ranks []int) EarlyTurnGrantedFrame {
	return EarlyTurnGrantedFrame{Type: FrameEarlyTurnGranted, PlayerID: playerID, Suit: suit, CardIDs: cardIDs, Ranks: ranks}
}

// CardData is the wire shape of a single card in an inbound play.
type CardData struct {
	Suit string `json:"suit"`
	Rank int    `json:"rank"`
}

// PlayCardsData is the inbound payload for FramePlay/FramePlayCards.
// ResolvedCards promotes the teacher's legacy single-card field into a
// one-element Cards slice when Cards itself is absent.
type PlayCardsData struct {
	PlayerID   string     `json:"player_id"`
	Cards      []CardData `json:"cards"`
	Card       *CardData  `json:"card,omitempty"`
	RoundID    *int       `json:"roundId,omitempty"`
	TrickIndex *int       `json:"trickIndex,omitempty"`
}

// ResolvedCards returns Cards, promoting the legacy singular Card
// field when Cards was left empty.
func (d PlayCardsData) ResolvedCards() []CardData {
	if len(d.Cards) > 0 {
		return d.Cards
	}
	if d.Card != nil {
		return []CardData{*d.Card}
	}
	return nil
}

// DeclareData is the inbound payload for FrameDeclare.
type DeclareData struct {
	PlayerID string `json:"player_id"`
	Combo    string `json:"combo"`
}

// RequestEarlyTurnData is the inbound payload for
// FrameRequestEarlyTurn.
type RequestEarlyTurnData struct {
	PlayerID string `json:"player_id"`
	Suit     string `json:"suit"`
	RoundID  *int   `json:"roundId,omitempty"`
}

// TableConfigData mirrors room.TableConfigView for the lobby listing.
type TableConfigData struct {
	MaxPlayers        int    `json:"maxPlayers"`
	DiscardVisibility string `json:"discardVisibility"`
	EnableFourEnds    bool   `json:"enableFourEnds"`
	TurnTimeoutSec    int    `json:"turnTimeoutSec"`
}

// RoomSummaryData is one entry in the lobby's FrameRooms payload.
type RoomSummaryData struct {
	RoomID      string          `json:"roomId"`
	Name        string          `json:"name"`
	VariantKey  string          `json:"variantKey"`
	PlayerCount int             `json:"playerCount"`
	PlayersMax  int             `json:"playersMax"`
	Started     bool            `json:"started"`
	Config      TableConfigData `json:"config"`
}

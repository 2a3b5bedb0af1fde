// Package dispatch is the Intent dispatcher: it decodes a frame from a
// session, invokes the matching Room operation, and replies with a
// broadcast on success or a typed error to the originating session on
// failure. Grounded on the teacher's Connection.handleMessage
// (internal/server/connection.go): a type switch over decoded frame
// types, each branch unmarshalling a typed payload and calling into
// one collaborator.
package dispatch

import (
	"encoding/json"

	"github.com/charmbracelet/log"

	"github.com/bura/server/internal/hub"
	"github.com/bura/server/internal/registry"
	"github.com/bura/server/internal/room"
	"github.com/bura/server/internal/wire"
)

// Dispatcher implements hub.IntentHandler.
type Dispatcher struct {
	registry *registry.Registry
	hub      *hub.Hub
	logger   *log.Logger
}

// New builds a Dispatcher wired to reg and h.
func New(reg *registry.Registry, h *hub.Hub, logger *log.Logger) *Dispatcher {
	return &Dispatcher{registry: reg, hub: h, logger: logger.WithPrefix("dispatch")}
}

// Handle decodes one inbound frame and invokes the matching Room
// operation. An invariant failure inside the Room panics; Handle
// recovers it here, evicts the room, and logs at error level,
// grounded on the teacher's recover() use in Connection.SendMessage
// guarding a send on a closed channel.
func (d *Dispatcher) Handle(s *hub.Session, frame *wire.Frame) {
	roomID := s.RoomID()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("room invariant violation, evicting room", "roomId", roomID, "panic", r)
			d.registry.Delete(roomID)
			d.hub.BroadcastLobby()
		}
	}()

	rm, ok := d.registry.Get(roomID)
	if !ok {
		return
	}

	var opErr error
	var grant *room.EarlyTurnGrant

	switch frame.Type {
	case wire.FramePlay, wire.FramePlayCards:
		opErr = d.handlePlay(rm, frame)
	case wire.FrameDeclare:
		opErr = d.handleDeclare(rm, frame)
	case wire.FrameRequestEarlyTurn:
		grant, opErr = d.handleEarlyTurn(rm, frame)
	default:
		return // unknown frame types are ignored, per spec.md section 7
	}

	if opErr != nil {
		kind := "unknownError"
		if re, ok := opErr.(*room.Error); ok {
			kind = string(re.Kind)
		}
		d.hub.SendError(s, kind)
		return
	}

	if grant != nil {
		d.hub.EmitEarlyTurnGranted(roomID, grant)
	}
	d.hub.BroadcastRoom(roomID)
}

func (d *Dispatcher) handlePlay(rm *room.Room, frame *wire.Frame) error {
	var data wire.PlayCardsData
	if err := json.Unmarshal(frame.Data, &data); err != nil {
		return nil // malformed payload: ignored per protocol-violation tier
	}

	cards, ok := wire.ToCards(data.ResolvedCards())
	if !ok {
		return room.NewError(room.ErrCardNotInHand)
	}

	return rm.PlayCards(data.PlayerID, cards, data.RoundID, data.TrickIndex)
}

func (d *Dispatcher) handleDeclare(rm *room.Room, frame *wire.Frame) error {
	var data wire.DeclareData
	if err := json.Unmarshal(frame.Data, &data); err != nil {
		return nil
	}
	return rm.DeclareCombination(data.PlayerID, room.Combo(data.Combo))
}

func (d *Dispatcher) handleEarlyTurn(rm *room.Room, frame *wire.Frame) (*room.EarlyTurnGrant, error) {
	var data wire.RequestEarlyTurnData
	if err := json.Unmarshal(frame.Data, &data); err != nil {
		return nil, nil
	}

	suit, ok := wire.ParseSuit(data.Suit)
	if !ok {
		return nil, room.NewError(room.ErrEarlyTurnInsufficientCards)
	}

	return rm.RequestEarlyTurn(data.PlayerID, suit, data.RoundID)
}

package hub

import (
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/bura/server/internal/registry"
	"github.com/bura/server/internal/room"
	"github.com/bura/server/internal/wire"
)

// IntentHandler decodes and executes one inbound frame from a session.
// Implemented by internal/dispatch.Dispatcher; declared here (rather
// than imported from there) so the Hub never depends on the
// dispatcher package.
type IntentHandler interface {
	Handle(s *Session, frame *wire.Frame)
}

type disconnectKey struct {
	roomID   string
	playerID string
}

// Hub is the Session Hub: it owns every attached session, the
// disconnected-player grace table, and the reaper. Grounded on the
// teacher's Connection/GameService split, generalized into one
// sync.RWMutex-guarded component per spec.md section 4.5.
type Hub struct {
	mu            sync.RWMutex
	roomSessions  map[string]map[*Session]struct{}
	lobbySessions map[*Session]struct{}
	disconnected  map[disconnectKey]time.Time

	registry *registry.Registry
	clock    quartz.Clock
	logger   *log.Logger
	handler  IntentHandler

	reapInterval time.Duration
	grace        time.Duration
}

// New builds a Hub over reg. Call SetHandler before Run to wire the
// intent dispatcher.
func New(reg *registry.Registry, clock quartz.Clock, logger *log.Logger) *Hub {
	return &Hub{
		roomSessions:  make(map[string]map[*Session]struct{}),
		lobbySessions: make(map[*Session]struct{}),
		disconnected:  make(map[disconnectKey]time.Time),
		registry:      reg,
		clock:         clock,
		logger:        logger.WithPrefix("hub"),
		reapInterval:  5 * time.Second,
		grace:         room.DisconnectGrace,
	}
}

// SetHandler wires the intent dispatcher. Must be called before any
// session attaches.
func (h *Hub) SetHandler(handler IntentHandler) {
	h.handler = handler
}

// Run starts the background reaper loop. It blocks until stop is
// closed, matching the teacher's BotPool.Run ticker-loop idiom.
func (h *Hub) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(h.reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.reapOnce()
		case <-stop:
			return
		}
	}
}

func (h *Hub) reapOnce() {
	now := h.clock.Now()

	var expired []disconnectKey
	h.mu.Lock()
	for k, at := range h.disconnected {
		if now.Sub(at) >= h.grace {
			expired = append(expired, k)
			delete(h.disconnected, k)
		}
	}
	h.mu.Unlock()

	for _, k := range expired {
		r, ok := h.registry.Get(k.roomID)
		if !ok {
			continue
		}
		r.RemovePlayer(k.playerID)
		h.logger.Info("reaped disconnected player", "roomId", k.roomID, "playerId", k.playerID)
		h.BroadcastRoom(k.roomID)
		h.cleanupRoomIfEmpty(k.roomID)
	}
}

// AttachRoom registers a new session for a room and player. If the
// (roomID, playerID) pair was in the disconnected-players table this
// is a reconnect, erasing that entry.
func (h *Hub) AttachRoom(conn *websocket.Conn, roomID, playerID string) (*Session, bool) {
	if _, ok := h.registry.Get(roomID); !ok {
		return nil, false
	}

	s := newSession(h, conn, roomID, playerID, false, h.logger)

	h.mu.Lock()
	if h.roomSessions[roomID] == nil {
		h.roomSessions[roomID] = make(map[*Session]struct{})
	}
	h.roomSessions[roomID][s] = struct{}{}
	delete(h.disconnected, disconnectKey{roomID: roomID, playerID: playerID})
	h.mu.Unlock()

	if r, ok := h.registry.Get(roomID); ok {
		r.SetDisconnected(playerID, false)
	}

	return s, true
}

// AttachLobby registers a new lobby session.
func (h *Hub) AttachLobby(conn *websocket.Conn) *Session {
	s := newSession(h, conn, "", "", true, h.logger)

	h.mu.Lock()
	h.lobbySessions[s] = struct{}{}
	h.mu.Unlock()

	return s
}

// Detach removes a session. If the room's match has started, the
// player is put in the disconnect-grace table instead of being
// removed immediately, so peers see disconnected=true until the
// reaper or a reconnect resolves it.
func (h *Hub) Detach(s *Session) {
	if s.IsLobby() {
		h.mu.Lock()
		delete(h.lobbySessions, s)
		h.mu.Unlock()
		return
	}

	roomID, playerID := s.RoomID(), s.PlayerID()

	h.mu.Lock()
	if set := h.roomSessions[roomID]; set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(h.roomSessions, roomID)
		}
	}
	h.mu.Unlock()

	r, ok := h.registry.Get(roomID)
	if !ok {
		return
	}

	if r.Started() {
		h.mu.Lock()
		h.disconnected[disconnectKey{roomID: roomID, playerID: playerID}] = h.clock.Now()
		h.mu.Unlock()
		r.SetDisconnected(playerID, true)
		h.BroadcastRoom(roomID)
		return
	}

	r.RemovePlayer(playerID)
	h.BroadcastRoom(roomID)
	h.BroadcastLobby()
	h.cleanupRoomIfEmpty(roomID)
}

func (h *Hub) cleanupRoomIfEmpty(roomID string) {
	if h.registry.DeleteIfEmpty(roomID) {
		h.mu.Lock()
		delete(h.roomSessions, roomID)
		h.mu.Unlock()
		h.BroadcastLobby()
	}
}

func (h *Hub) handleInbound(s *Session, frame *wire.Frame) {
	if h.handler != nil {
		h.handler.Handle(s, frame)
	}
}

// SendError sends a typed error frame to one session only.
func (h *Hub) SendError(s *Session, kind string) {
	s.Send(wire.NewErrorFrame(kind))
}

// BroadcastRoom snapshots the room once per attached viewer and sends
// each a {type:"state"} frame scoped to that viewer. Fan-out runs
// through errgroup, grounded on the teacher's bounded-parallel use of
// golang.org/x/sync/errgroup in internal/evaluator/equity.go.
func (h *Hub) BroadcastRoom(roomID string) {
	r, ok := h.registry.Get(roomID)
	if !ok {
		return
	}

	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.roomSessions[roomID]))
	for s := range h.roomSessions[roomID] {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	var g errgroup.Group
	for _, s := range sessions {
		s := s
		g.Go(func() error {
			snap := r.ToState(s.PlayerID())
			s.Send(wire.NewStateFrame(snap))
			return nil
		})
	}
	_ = g.Wait()
}

// EmitEarlyTurnGranted sends the EARLY_TURN_GRANTED event to every
// session attached to roomID, before the caller's following state
// broadcast.
func (h *Hub) EmitEarlyTurnGranted(roomID string, grant *room.EarlyTurnGrant) {
	cardIDs := make([]string, len(grant.Cards))
	ranks := make([]int, len(grant.Cards))
	for i, c := range grant.Cards {
		cardIDs[i] = c.ID()
		ranks[i] = int(c.Rank)
	}

	f := wire.NewEarlyTurnGrantedFrame(grant.PlayerID, grant.Suit.String(), cardIDs, ranks)

	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.roomSessions[roomID]))
	for s := range h.roomSessions[roomID] {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.Send(f)
	}
}

// BroadcastLobby sends the current room list to every lobby session.
func (h *Hub) BroadcastLobby() {
	summaries := h.registry.List()
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].RoomID < summaries[j].RoomID })

	entries := make([]wire.RoomSummaryData, len(summaries))
	for i, sum := range summaries {
		entries[i] = wire.RoomSummaryData{
			RoomID:      sum.RoomID,
			Name:        sum.Name,
			VariantKey:  sum.VariantKey,
			PlayerCount: sum.PlayerCount,
			PlayersMax:  sum.PlayersMax,
			Started:     sum.Started,
			Config: wire.TableConfigData{
				MaxPlayers:        sum.Config.MaxPlayers,
				DiscardVisibility: string(sum.Config.DiscardVisibility),
				EnableFourEnds:    sum.Config.EnableFourEnds,
				TurnTimeoutSec:    sum.Config.TurnTimeoutSec,
			},
		}
	}

	f := wire.NewRoomsFrame(entries)

	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.lobbySessions))
	for s := range h.lobbySessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.Send(f)
	}
}

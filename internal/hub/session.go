// Package hub is the Session Hub: it attaches duplex sessions to
// rooms or the lobby, fans out viewer-scoped snapshots, and tracks
// disconnected players with a grace window reaped on a ticker.
// Grounded on the teacher's Connection (internal/server/connection.go)
// for the per-session read/write pump shape, and on
// TableEventSubscriber (internal/server/game_service.go) for the
// per-viewer broadcast fan-out.
package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/bura/server/internal/wire"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Session is one duplex connection, attached to either a room (with a
// playerID) or the lobby.
type Session struct {
	conn   *websocket.Conn
	send   chan any
	logger *log.Logger

	mu       sync.RWMutex
	roomID   string
	playerID string
	isLobby  bool

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	hub *Hub
}

func newSession(hub *Hub, conn *websocket.Conn, roomID, playerID string, isLobby bool, logger *log.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		conn:     conn,
		send:     make(chan any, 32),
		logger:   logger.WithPrefix("session"),
		roomID:   roomID,
		playerID: playerID,
		isLobby:  isLobby,
		ctx:      ctx,
		cancel:   cancel,
		hub:      hub,
	}
}

// Start launches the read and write pumps. It returns once both have
// exited, i.e. once the connection has fully closed.
func (s *Session) Start() {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.writePump() }()
	go func() { defer wg.Done(); s.readPump() }()
	wg.Wait()
}

// Close shuts the session down exactly once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		_ = s.conn.Close()
	})
}

// Send enqueues a frame for delivery, dropping the session if its
// outbound buffer is full rather than blocking the fan-out. f is one
// of wire's outbound frame types (e.g. the value of NewStateFrame).
func (s *Session) Send(f any) {
	select {
	case s.send <- f:
	case <-s.ctx.Done():
	default:
		s.logger.Warn("send buffer full, closing session", "roomId", s.RoomID(), "playerId", s.PlayerID())
		s.Close()
	}
}

// RoomID returns the session's attached room id, if any.
func (s *Session) RoomID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomID
}

// PlayerID returns the session's attached player id, if any.
func (s *Session) PlayerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerID
}

// IsLobby reports whether this session is attached to the lobby
// channel rather than a room.
func (s *Session) IsLobby() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLobby
}

func (s *Session) readPump() {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		if s.isLobby {
			continue // lobby sessions are keep-alive only; inbound frames are ignored
		}

		var head struct {
			Type wire.FrameType `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			continue // malformed frame: dropped, per protocol-violation tier
		}
		s.hub.handleInbound(s, &wire.Frame{Type: head.Type, Data: raw})
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}

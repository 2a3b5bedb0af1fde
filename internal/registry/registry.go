// Package registry is the process-wide keyed store mapping room id to
// *room.Room. Grounded on the teacher's GameManager
// (internal/server/game_manager.go): a sync.RWMutex-guarded map with
// create/get/list/delete operations. The teacher's "first created
// becomes default" convenience is dropped — Bura has no default
// room — but the RWMutex-guarded map shape is kept.
package registry

import (
	"sync"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/bura/server/internal/room"
)

// RoomSummary is the lobby-facing listing of one room, grounded on
// original_source/backend/game.py's list_rooms_summary().
type RoomSummary struct {
	RoomID      string
	Name        string
	VariantKey  string
	PlayerCount int
	PlayersMax  int
	Started     bool
	Config      room.TableConfig
}

// Registry is a concurrent map of room id to *room.Room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room
	clock quartz.Clock
	sink  room.MatchEndSink
}

// New returns an empty Registry. clock and sink are threaded into
// every room this Registry creates.
func New(clock quartz.Clock, sink room.MatchEndSink) *Registry {
	return &Registry{
		rooms: make(map[string]*room.Room),
		clock: clock,
		sink:  sink,
	}
}

// Create builds and inserts a new room with a generated id.
func (reg *Registry) Create(name, variantKey string, config room.TableConfig) *room.Room {
	id := uuid.NewString()
	r := room.New(id, name, variantKey, config, reg.clock, reg.sink)

	reg.mu.Lock()
	reg.rooms[id] = r
	reg.mu.Unlock()

	return r
}

// Get returns the room for id, or false if it does not exist.
func (reg *Registry) Get(id string) (*room.Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[id]
	return r, ok
}

// Delete removes a room from the registry.
func (reg *Registry) Delete(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, id)
}

// DeleteIfEmpty removes the room only if it is unstarted with no
// seated players, matching the Hub's auto-deletion rule.
func (reg *Registry) DeleteIfEmpty(id string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[id]
	if !ok {
		return false
	}
	if r.Started() || r.PlayerCount() > 0 {
		return false
	}
	delete(reg.rooms, id)
	return true
}

// List returns a summary of every room, sorted by insertion is not
// guaranteed since map iteration order is random; callers needing a
// stable order should sort by RoomID.
func (reg *Registry) List() []RoomSummary {
	reg.mu.RLock()
	ids := make([]string, 0, len(reg.rooms))
	rooms := make([]*room.Room, 0, len(reg.rooms))
	for id, r := range reg.rooms {
		ids = append(ids, id)
		rooms = append(rooms, r)
	}
	reg.mu.RUnlock()

	summaries := make([]RoomSummary, len(rooms))
	for i, r := range rooms {
		summaries[i] = RoomSummary{
			RoomID:      ids[i],
			Name:        r.Name,
			VariantKey:  r.VariantKey,
			PlayerCount: r.PlayerCount(),
			PlayersMax:  r.Config.MaxPlayers,
			Started:     r.Started(),
			Config:      r.Config,
		}
	}
	return summaries
}

package main

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/bura/server/internal/config"
	"github.com/bura/server/internal/hub"
	"github.com/bura/server/internal/registry"
	"github.com/bura/server/internal/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func newServer(reg *registry.Registry, h *hub.Hub, cfg *config.ServerConfig, logger *log.Logger, addr string) *http.Server {
	mux := http.NewServeMux()
	logger = logger.WithPrefix("http")

	mux.HandleFunc("GET /lobby", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s := h.AttachLobby(conn)
		h.BroadcastLobby()
		s.Start()
		h.Detach(s)
	})

	mux.HandleFunc("GET /room/{roomId}", func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("roomId")
		playerID := r.URL.Query().Get("playerId")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		s, ok := h.AttachRoom(conn, roomID, playerID)
		if !ok {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(1008, "room_not_found"))
			_ = conn.Close()
			return
		}

		h.BroadcastRoom(roomID)
		s.Start()
		h.Detach(s)
	})

	mux.HandleFunc("GET /api/rooms", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, reg.List())
	})

	mux.HandleFunc("POST /api/rooms", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name       string `json:"name"`
			VariantKey string `json:"variantKey"`
			CreatorID  string `json:"creatorId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if body.VariantKey == "" {
			body.VariantKey = room.DefaultVariantKey
		}

		tableCfg := cfg.TableByName("default")
		if v, ok := room.Variants[body.VariantKey]; ok {
			tableCfg.MaxPlayers = v.MaxPlayers
		}

		rm := reg.Create(body.Name, body.VariantKey, tableCfg)
		if body.CreatorID != "" {
			_ = rm.AddPlayer(body.CreatorID, body.CreatorID, "")
		}
		h.BroadcastLobby()
		writeJSON(w, map[string]string{"roomId": rm.ID})
	})

	mux.HandleFunc("POST /api/rooms/{roomId}/join", func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("roomId")
		var body struct {
			PlayerID string `json:"playerId"`
			Name     string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		rm, ok := reg.Get(roomID)
		if !ok {
			http.Error(w, "roomNotFound", http.StatusNotFound)
			return
		}
		if err := rm.AddPlayer(body.PlayerID, body.Name, ""); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		h.BroadcastRoom(roomID)
		h.BroadcastLobby()
		writeJSON(w, map[string]bool{"ok": true})
	})

	mux.HandleFunc("POST /api/rooms/{roomId}/start", func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("roomId")
		rm, ok := reg.Get(roomID)
		if !ok {
			http.Error(w, "roomNotFound", http.StatusNotFound)
			return
		}
		if err := rm.Start(); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.BroadcastRoom(roomID)
		writeJSON(w, map[string]bool{"ok": true})
	})

	mux.HandleFunc("GET /api/rooms/{roomId}/state", func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("roomId")
		viewerID := r.URL.Query().Get("viewerId")

		rm, ok := reg.Get(roomID)
		if !ok {
			http.Error(w, "roomNotFound", http.StatusNotFound)
			return
		}
		writeJSON(w, rm.ToState(viewerID))
	})

	return &http.Server{
		Addr:    addr,
		Handler: mux,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

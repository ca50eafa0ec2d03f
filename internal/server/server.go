// Package server hosts Hand and Foot games over websockets. Each room owns
// one game; connected clients submit wire-encoded actions and receive the
// ordered, accepted action log plus state snapshots. The server keeps no
// persistent state and does no authentication: a seat is claimed by name.
package server

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/boztalay/handandfoot/internal/config"
)

// Server tracks the hosted rooms and exposes the HTTP surface.
type Server struct {
	cfg *config.Config
	log *logrus.Logger

	mu    sync.Mutex
	rooms map[uuid.UUID]*room
}

func New(cfg *config.Config, log *logrus.Logger) *Server {
	return &Server{
		cfg:   cfg,
		log:   log,
		rooms: make(map[uuid.UUID]*room),
	}
}

// Handler returns the HTTP mux: POST /rooms to create a game, GET /join to
// attach a websocket to a seat.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rooms", s.handleCreateRoom)
	mux.HandleFunc("/join", s.handleJoin)
	return mux
}

type createRoomRequest struct {
	Players []string `json:"players"`
}

type createRoomResponse struct {
	Room uuid.UUID `json:"room"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("malformed request: %v", err), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rooms) >= s.cfg.MaxRooms {
		http.Error(w, "too many rooms", http.StatusServiceUnavailable)
		return
	}
	rm, err := newRoom(req.Players, rand.Uint64(), s.cfg.RoomIdleTimeout, logrus.NewEntry(s.log))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.rooms[rm.id] = rm
	rm.onClose = func() { s.removeRoom(rm.id) }
	go rm.run()
	s.log.WithFields(logrus.Fields{"room": rm.id, "players": req.Players}).Info("room created")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(createRoomResponse{Room: rm.id})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(r.URL.Query().Get("room"))
	if err != nil {
		http.Error(w, "missing or malformed room id", http.StatusBadRequest)
		return
	}
	seat := r.URL.Query().Get("player")

	s.mu.Lock()
	rm := s.rooms[roomID]
	s.mu.Unlock()
	if rm == nil {
		http.Error(w, "no such room", http.StatusNotFound)
		return
	}
	if !rm.hasSeat(seat) {
		http.Error(w, fmt.Sprintf("no seat for player %q", seat), http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}

	c := newClient(conn, seat, rm)
	select {
	case rm.register <- c:
	case <-rm.done:
		conn.Close(websocket.StatusGoingAway, "room closed")
		return
	}
	go c.writeLoop(r.Context())
	c.readLoop(r.Context())
}

func (s *Server) removeRoom(id uuid.UUID) {
	s.mu.Lock()
	delete(s.rooms, id)
	s.mu.Unlock()
}

package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/boztalay/handandfoot/engine"
)

// clientMessage is what a connected client may send: either a join carrying
// the seat name, or a wire-encoded action.
type clientMessage struct {
	Type   string          `json:"type"`
	Action json.RawMessage `json:"action,omitempty"`
}

// serverMessage is what the room sends back. Accepted actions are broadcast
// in submission order together with the resulting snapshot, so clients can
// either replay the log or trust the state — both arrive at the same place.
type serverMessage struct {
	Type    string               `json:"type"`
	Players []string             `json:"players,omitempty"`
	Action  *engine.Action       `json:"action,omitempty"`
	State   *engine.GameSnapshot `json:"state,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// request pairs an inbound payload with the client it came from.
type request struct {
	origin  *client
	payload []byte
}

// room hosts one game. All game access happens on the room's processing
// goroutine; clients talk to it through channels only. A room that stays
// empty for its idle timeout shuts itself down: it closes done, reports
// itself via onClose, and its goroutine exits.
type room struct {
	id          uuid.UUID
	game        *engine.Game
	seats       []string
	idleTimeout time.Duration
	log         *logrus.Entry

	// onClose is invoked once, from the room goroutine, after done closes.
	onClose func()

	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	requests   chan request
	done       chan struct{}

	idle *time.Timer
}

func newRoom(players []string, seed uint64, idleTimeout time.Duration, log *logrus.Entry) (*room, error) {
	game, err := engine.NewGame(players, seed)
	if err != nil {
		return nil, err
	}
	r := &room{
		id:          uuid.New(),
		game:        game,
		seats:       append([]string(nil), players...),
		idleTimeout: idleTimeout,
		clients:     make(map[*client]bool),
		register:    make(chan *client),
		unregister:  make(chan *client),
		requests:    make(chan request),
		done:        make(chan struct{}),
	}
	r.log = log.WithField("room", r.id)
	return r, nil
}

// hasSeat reports whether the room was created with the given player name.
func (r *room) hasSeat(name string) bool {
	for _, s := range r.seats {
		if s == name {
			return true
		}
	}
	return false
}

// run is the room's processing goroutine. It owns the game; nothing else
// touches it. The idle timer is armed whenever the room has no clients; a
// non-positive timeout disables reaping.
func (r *room) run() {
	r.idle = time.NewTimer(r.idleTimeout)
	if r.idleTimeout <= 0 {
		r.idle.Stop()
	}
	defer r.idle.Stop()
	for {
		select {
		case c := <-r.register:
			if !r.idle.Stop() {
				select {
				case <-r.idle.C:
				default:
				}
			}
			r.clients[c] = true
			r.log.WithField("player", c.seat).Info("player connected")
			r.send(c, r.encode(serverMessage{Type: "joined", Players: r.seats}))
			snap := r.game.Snapshot()
			r.send(c, r.encode(serverMessage{Type: "state", State: &snap}))

		case c := <-r.unregister:
			r.dropClient(c)

		case req := <-r.requests:
			r.handleRequest(req)

		case <-r.idle.C:
			if len(r.clients) > 0 {
				// A stale expiry that slipped past the register drain.
				continue
			}
			r.log.Info("closing idle room")
			close(r.done)
			if r.onClose != nil {
				r.onClose()
			}
			return
		}
	}
}

func (r *room) handleRequest(req request) {
	var msg clientMessage
	if err := json.Unmarshal(req.payload, &msg); err != nil {
		r.send(req.origin, r.encodeError(fmt.Errorf("malformed message: %w", err)))
		return
	}
	switch msg.Type {
	case "action":
		r.handleAction(req.origin, msg.Action)
	default:
		r.send(req.origin, r.encodeError(fmt.Errorf("unknown message type %q", msg.Type)))
	}
}

// handleAction decodes, validates and applies a submitted action. Rejected
// actions go back to the sender only; accepted ones are broadcast with the
// new state.
func (r *room) handleAction(origin *client, raw json.RawMessage) {
	action, err := engine.DecodeAction(raw)
	if err != nil {
		r.send(origin, r.encodeError(err))
		return
	}
	if action.Player != origin.seat {
		r.send(origin, r.encodeError(fmt.Errorf("cannot submit actions for %q", action.Player)))
		return
	}
	if err := r.game.Apply(action); err != nil {
		r.send(origin, r.encodeError(err))
		return
	}
	r.log.WithFields(logrus.Fields{
		"player": action.Player,
		"type":   action.Type,
	}).Debug("action applied")

	snap := r.game.Snapshot()
	r.broadcast(r.encode(serverMessage{Type: "action", Action: &action, State: &snap}))
}

func (r *room) broadcast(msg []byte) {
	for c := range r.clients {
		r.send(c, msg)
	}
}

// send hands a message to the client's write loop. A client whose buffer is
// full is too far behind to keep playing and gets dropped. Only safe to
// call from the room's processing goroutine.
func (r *room) send(c *client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		r.dropClient(c)
	}
}

// dropClient removes and closes a client, re-arming the idle timer when the
// last one leaves. Only safe to call from the room's processing goroutine.
func (r *room) dropClient(c *client) {
	if r.clients[c] {
		delete(r.clients, c)
		c.close()
		r.log.WithField("player", c.seat).Info("player disconnected")
		if len(r.clients) == 0 && r.idleTimeout > 0 {
			r.idle.Reset(r.idleTimeout)
		}
	}
}

func (r *room) encode(msg serverMessage) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		// serverMessage has no unmarshalable fields; this cannot happen.
		r.log.WithError(err).Error("encoding server message")
		return []byte(`{"type":"error","error":"internal error"}`)
	}
	return data
}

func (r *room) encodeError(err error) []byte {
	return r.encode(serverMessage{Type: "error", Error: err.Error()})
}

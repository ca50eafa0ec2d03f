package server

import (
	"context"
	"sync"

	"github.com/coder/websocket"
)

// sendBuffer is how many outbound messages a client may fall behind before
// being disconnected.
const sendBuffer = 32

// client is one websocket connection seated at a room.
type client struct {
	conn *websocket.Conn
	seat string
	room *room

	send      chan []byte
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, seat string, r *room) *client {
	return &client{
		conn: conn,
		seat: seat,
		room: r,
		send: make(chan []byte, sendBuffer),
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		c.conn.Close(websocket.StatusNormalClosure, "")
	})
}

// readLoop forwards inbound frames to the room until the connection dies.
// Sends race the room's shutdown, so they all select against done.
func (c *client) readLoop(ctx context.Context) {
	defer func() {
		select {
		case c.room.unregister <- c:
		case <-c.room.done:
		}
	}()
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		select {
		case c.room.requests <- request{origin: c, payload: data}:
		case <-c.room.done:
			return
		}
	}
}

// writeLoop drains the send channel onto the wire.
func (c *client) writeLoop(ctx context.Context) {
	for msg := range c.send {
		if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
			return
		}
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boztalay/handandfoot/engine"
	"github.com/boztalay/handandfoot/internal/config"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	return newTestServerWith(t, &config.Config{MaxRooms: 4, RoomIdleTimeout: time.Minute})
}

func newTestServerWith(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := New(cfg, log)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func createRoom(t *testing.T, ts *httptest.Server, players ...string) uuid.UUID {
	t.Helper()
	body, err := json.Marshal(createRoomRequest{Players: players})
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/rooms", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out createRoomResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Room
}

func dialSeat(t *testing.T, ctx context.Context, ts *httptest.Server, room uuid.UUID, seat string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/join?room=" + room.String() + "&player=" + seat
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) serverMessage {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg serverMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func sendAction(t *testing.T, ctx context.Context, conn *websocket.Conn, a engine.Action) {
	t.Helper()
	raw, err := a.Encode()
	require.NoError(t, err)
	payload, err := json.Marshal(clientMessage{Type: "action", Action: raw})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, payload))
}

func TestCreateRoomValidation(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/rooms", "application/json",
		strings.NewReader(`{"players": ["alice"]}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "one player is not a game")

	resp, err = http.Get(ts.URL + "/rooms")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRoomCapIsEnforced(t *testing.T) {
	_, ts := newTestServerWith(t, &config.Config{MaxRooms: 1, RoomIdleTimeout: time.Minute})

	createRoom(t, ts, "alice", "bob")
	resp, err := http.Post(ts.URL+"/rooms", "application/json",
		strings.NewReader(`{"players": ["carol", "dave"]}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestIdleRoomIsReaped(t *testing.T) {
	_, ts := newTestServerWith(t, &config.Config{MaxRooms: 1, RoomIdleTimeout: 50 * time.Millisecond})

	createRoom(t, ts, "alice", "bob")

	// Once the idle room shuts down, its slot under the cap frees up.
	assert.Eventually(t, func() bool {
		resp, err := http.Post(ts.URL+"/rooms", "application/json",
			strings.NewReader(`{"players": ["carol", "dave"]}`))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 25*time.Millisecond)
}

func TestConnectedClientKeepsRoomAlive(t *testing.T) {
	_, ts := newTestServerWith(t, &config.Config{MaxRooms: 4, RoomIdleTimeout: 50 * time.Millisecond})
	room := createRoom(t, ts, "alice", "bob")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialSeat(t, ctx, ts, room, "alice")
	readMessage(t, ctx, alice)
	readMessage(t, ctx, alice)

	// Well past the idle timeout, the seated client still gets service.
	time.Sleep(200 * time.Millisecond)
	sendAction(t, ctx, alice, engine.Action{Type: engine.ActionDrawFromDeck, Player: "alice"})
	got := readMessage(t, ctx, alice)
	assert.Equal(t, "action", got.Type)

	// After the last client leaves, the room winds down and joins fail. Poll
	// slower than the idle timeout so a probe connection's own disconnect
	// leaves the timer room to expire between attempts.
	alice.Close(websocket.StatusNormalClosure, "")
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/join?room=" + room.String() + "&player=bob"
	assert.Eventually(t, func() bool {
		conn, _, err := websocket.Dial(ctx, url, nil)
		if err != nil {
			return true
		}
		conn.Close(websocket.StatusNormalClosure, "")
		return false
	}, 2*time.Second, 250*time.Millisecond)
}

func TestJoinRejectsUnknownRoomAndSeat(t *testing.T) {
	_, ts := newTestServer(t)
	room := createRoom(t, ts, "alice", "bob")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	_, _, err := websocket.Dial(ctx, url+"/join?room="+uuid.NewString()+"&player=alice", nil)
	assert.Error(t, err, "unknown room")

	_, _, err = websocket.Dial(ctx, url+"/join?room="+room.String()+"&player=mallory", nil)
	assert.Error(t, err, "no such seat")
}

func TestJoinDeliversRosterAndState(t *testing.T) {
	_, ts := newTestServer(t)
	room := createRoom(t, ts, "alice", "bob")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialSeat(t, ctx, ts, room, "alice")

	joined := readMessage(t, ctx, conn)
	assert.Equal(t, "joined", joined.Type)
	assert.Equal(t, []string{"alice", "bob"}, joined.Players)

	state := readMessage(t, ctx, conn)
	assert.Equal(t, "state", state.Type)
	require.NotNil(t, state.State)
	assert.Len(t, state.State.Players, 2)
	assert.Len(t, state.State.Players[0].Hand, engine.HandSize)
}

func TestActionRoundTrip(t *testing.T) {
	_, ts := newTestServer(t)
	room := createRoom(t, ts, "alice", "bob")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialSeat(t, ctx, ts, room, "alice")
	readMessage(t, ctx, alice) // joined
	readMessage(t, ctx, alice) // state
	bob := dialSeat(t, ctx, ts, room, "bob")
	readMessage(t, ctx, bob)
	readMessage(t, ctx, bob)

	sendAction(t, ctx, alice, engine.Action{Type: engine.ActionDrawFromDeck, Player: "alice"})

	got := readMessage(t, ctx, alice)
	require.Equal(t, "action", got.Type)
	require.NotNil(t, got.Action)
	assert.Equal(t, engine.ActionDrawFromDeck, got.Action.Type)
	require.NotNil(t, got.State)

	echoed := readMessage(t, ctx, bob)
	assert.Equal(t, "action", echoed.Type, "accepted actions are broadcast to every seat")
}

func TestActionRejections(t *testing.T) {
	_, ts := newTestServer(t)
	room := createRoom(t, ts, "alice", "bob")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialSeat(t, ctx, ts, room, "alice")
	readMessage(t, ctx, alice)
	readMessage(t, ctx, alice)

	// Submitting for another seat is refused before the game sees it.
	sendAction(t, ctx, alice, engine.Action{Type: engine.ActionDrawFromDeck, Player: "bob"})
	msg := readMessage(t, ctx, alice)
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Error, "bob")

	// A rule violation comes back to the sender only.
	card := engine.NewCard(engine.SuitHearts, engine.RankAce)
	sendAction(t, ctx, alice, engine.Action{Type: engine.ActionDiscardCard, Player: "alice", Card: &card})
	msg = readMessage(t, ctx, alice)
	assert.Equal(t, "error", msg.Type)

	// Garbage never reaches the game either.
	require.NoError(t, alice.Write(ctx, websocket.MessageText, []byte(`{"type":"dance"}`)))
	msg = readMessage(t, ctx, alice)
	assert.Equal(t, "error", msg.Type)
}

func TestRoomSeatHelpers(t *testing.T) {
	log := logrus.NewEntry(logrus.New())
	_, err := newRoom([]string{"alice"}, 1, time.Minute, log)
	assert.ErrorIs(t, err, engine.ErrTooFewPlayers)

	r, err := newRoom([]string{"alice", "bob"}, 1, time.Minute, log)
	require.NoError(t, err)
	assert.True(t, r.hasSeat("alice"))
	assert.False(t, r.hasSeat("mallory"))
}

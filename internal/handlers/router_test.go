// internal/handlers/router_test.go
package handlers

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zeller74/villain-sub001/internal/auth"
	"github.com/Zeller74/villain-sub001/internal/chat"
	"github.com/Zeller74/villain-sub001/internal/game"
)

// newTestServer builds a server with no infrastructure behind it. Handlers
// never touch the websocket directly, so tests drive dispatch with conn-free
// clients whose frames pile up in the send queue.
func newTestServer() *Server {
	auth.Init("handlers-test-secret")
	return NewServer(game.NewRoomStore(), chat.NewBroker(), nil)
}

func newTestClient(s *Server) *client {
	c := &client{send: make(chan []byte, 256)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	return c
}

func frame(ack int64, typ string, data map[string]interface{}) *clientFrame {
	return &clientFrame{Type: typ, Data: data, Ack: ack}
}

// readAck drains the client's queue until the acknowledgement with the given
// correlation id turns up, skipping interleaved room broadcasts.
func readAck(t *testing.T, c *client, ackID int64) map[string]interface{} {
	t.Helper()
	for {
		select {
		case b := <-c.send:
			var f ackFrame
			require.NoError(t, json.Unmarshal(b, &f))
			if f.Type == "ack" && f.Ack == ackID {
				return f.Data
			}
		default:
			t.Fatalf("no ack %d queued", ackID)
		}
	}
}

// requireOK dispatches a frame and fails unless it is acknowledged ok.
func requireOK(t *testing.T, s *Server, c *client, f *clientFrame) map[string]interface{} {
	t.Helper()
	s.dispatch(c, f)
	data := readAck(t, c, f.Ack)
	require.Equal(t, true, data["ok"], "expected %s to succeed, got %v", f.Type, data["error"])
	return data
}

// seatInNewRoom runs a client through hello and room creation, returning the
// new room's id.
func seatInNewRoom(t *testing.T, s *Server, c *client, name, passcode string) uuid.UUID {
	t.Helper()
	requireOK(t, s, c, frame(1, "session:hello", map[string]interface{}{"name": name}))
	data := requireOK(t, s, c, frame(2, "room:create", map[string]interface{}{"name": name, "passcode": passcode}))
	roomID, err := uuid.Parse(data["roomId"].(string))
	require.NoError(t, err)
	return roomID
}

// TestJoinPasscodeGate verifies a passcoded room rejects a wrong passcode
// without seating the caller, and seats them with the right one.
func TestJoinPasscodeGate(t *testing.T) {
	s := newTestServer()
	owner := newTestClient(s)
	roomID := seatInNewRoom(t, s, owner, "Alice", "hunter2")
	room := s.Store.Get(roomID)
	require.NotNil(t, room)

	joiner := newTestClient(s)
	requireOK(t, s, joiner, frame(1, "session:hello", map[string]interface{}{"name": "Bob"}))

	s.dispatch(joiner, frame(2, "room:join", map[string]interface{}{
		"roomId":   roomID.String(),
		"name":     "Bob",
		"passcode": "wrong",
	}))
	data := readAck(t, joiner, 2)
	assert.Equal(t, false, data["ok"])
	assert.Equal(t, "wrong passcode", data["error"])
	assert.Equal(t, 1, room.PlayerCount(), "a rejected join must not seat the caller")

	rid, _ := joiner.bound()
	assert.Equal(t, uuid.Nil, rid, "a rejected join must leave the client unbound")

	data = requireOK(t, s, joiner, frame(3, "room:join", map[string]interface{}{
		"roomId":   roomID.String(),
		"name":     "Bob",
		"passcode": "hunter2",
	}))
	assert.NotEmpty(t, data["playerId"])
	assert.Equal(t, 2, room.PlayerCount())
}

// TestJoinOpenRoomIgnoresPasscode verifies rooms created without a passcode
// admit anyone, whatever they send.
func TestJoinOpenRoomIgnoresPasscode(t *testing.T) {
	s := newTestServer()
	owner := newTestClient(s)
	roomID := seatInNewRoom(t, s, owner, "Alice", "")

	joiner := newTestClient(s)
	requireOK(t, s, joiner, frame(1, "session:hello", map[string]interface{}{"name": "Bob"}))
	requireOK(t, s, joiner, frame(2, "room:join", map[string]interface{}{
		"roomId":   roomID.String(),
		"name":     "Bob",
		"passcode": "whatever",
	}))
	assert.Equal(t, 2, s.Store.Get(roomID).PlayerCount())
}

// TestRoomDestroyedWhenEmpty verifies the last leave tears the room and its
// chat backlog down, after ownership handed over on the first leave.
func TestRoomDestroyedWhenEmpty(t *testing.T) {
	s := newTestServer()
	owner := newTestClient(s)
	roomID := seatInNewRoom(t, s, owner, "Alice", "")

	joiner := newTestClient(s)
	requireOK(t, s, joiner, frame(1, "session:hello", map[string]interface{}{"name": "Bob"}))
	data := requireOK(t, s, joiner, frame(2, "room:join", map[string]interface{}{"roomId": roomID.String(), "name": "Bob"}))
	bobID, err := uuid.Parse(data["playerId"].(string))
	require.NoError(t, err)

	requireOK(t, s, owner, frame(3, "chat:send", map[string]interface{}{"text": "see you"}))
	require.NotEmpty(t, s.Chat.History(roomID))

	requireOK(t, s, owner, frame(4, "room:leave", nil))
	room := s.Store.Get(roomID)
	require.NotNil(t, room, "a half-empty room must survive")
	assert.Equal(t, 1, room.PlayerCount())
	assert.Equal(t, bobID, room.OwnerID, "ownership should pass to the remaining seat")

	requireOK(t, s, joiner, frame(3, "room:leave", nil))
	assert.Nil(t, s.Store.Get(roomID), "the last leave must destroy the room")
	assert.Empty(t, s.Chat.History(roomID), "the chat backlog dies with the room")
}

// TestDropClientActsAsLeave verifies disconnect cleanup unseats the player
// like an explicit leave, and that running it twice is harmless.
func TestDropClientActsAsLeave(t *testing.T) {
	s := newTestServer()
	owner := newTestClient(s)
	roomID := seatInNewRoom(t, s, owner, "Alice", "")

	s.dropClient(owner)
	assert.Nil(t, s.Store.Get(roomID))
	s.dropClient(owner)
}

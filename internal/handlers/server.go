// internal/handlers/server.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Zeller74/villain-sub001/internal/chat"
	"github.com/Zeller74/villain-sub001/internal/game"
	"github.com/Zeller74/villain-sub001/internal/models"
)

// sendQueueSize bounds the per-client outbound queue. Frames beyond it are
// dropped rather than blocking a room broadcast under its lock; the next
// room sync makes a slow client whole again.
const sendQueueSize = 32

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// Server owns the websocket endpoint: it accepts connections, routes inbound
// frames, and fans room events back out. Lock order is room.Mu, then
// Server.mu, then client.mu; broadcasts run under all three.
type Server struct {
	Store *game.RoomStore
	Chat  *chat.Broker

	originPatterns []string

	mu       sync.RWMutex
	clients  map[*client]struct{}
	registry map[uuid.UUID]*client // player id -> connection
}

// client is one websocket connection plus its session and seat bindings.
type client struct {
	conn *websocket.Conn
	send chan []byte

	mu        sync.Mutex
	sessionID models.SessionID
	name      string
	roomID    uuid.UUID
	playerID  uuid.UUID
}

// session returns the connection's established session identity and the
// display name it carried, if any.
func (c *client) session() (models.SessionID, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID, c.name
}

// bound returns the client's current room and seat ids.
func (c *client) bound() (uuid.UUID, uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID, c.playerID
}

// NewServer wires a server around the given room store and chat broker.
func NewServer(store *game.RoomStore, broker *chat.Broker, originPatterns []string) *Server {
	return &Server{
		Store:          store,
		Chat:           broker,
		originPatterns: originPatterns,
		clients:        make(map[*client]struct{}),
		registry:       make(map[uuid.UUID]*client),
	}
}

// ServeWS upgrades the request and runs the connection until it drops. The
// write pump runs in its own goroutine; reads happen here.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns,
	})
	if err != nil {
		logrus.Warnf("websocket accept from %s failed: %v", r.RemoteAddr, err)
		return
	}
	defer conn.CloseNow()

	c := &client{conn: conn, send: make(chan []byte, sendQueueSize)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	logrus.Debugf("client connected from %s", r.RemoteAddr)

	go c.writePump(r.Context())

	s.readLoop(r.Context(), c)
	s.dropClient(c)
}

// readLoop consumes frames until the connection errors or closes.
func (s *Server) readLoop(ctx context.Context, c *client) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			logrus.Debugf("dropping malformed frame: %v", err)
			continue
		}
		s.dispatch(c, &frame)
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *client) writePump(ctx context.Context) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case msg := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		case <-ping.C:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(wctx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// enqueue hands a marshaled frame to the write pump without blocking.
func (c *client) enqueue(b []byte) {
	select {
	case c.send <- b:
	default:
		logrus.Warn("client send queue full, dropping frame")
	}
}

// dropClient tears down a closed connection: a disconnect unseats the player
// the same way an explicit leave does. Safe to run after the client already
// left.
func (s *Server) dropClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()

	s.leaveCurrentRoom(c)
	logrus.Debug("client disconnected")
}

// bind points a client at a seat and registers it for private events.
func (s *Server) bind(c *client, roomID, playerID uuid.UUID) {
	c.mu.Lock()
	c.roomID = roomID
	c.playerID = playerID
	c.mu.Unlock()

	s.mu.Lock()
	s.registry[playerID] = c
	s.mu.Unlock()
}

// boundRoom resolves the client's current room and seat.
func (s *Server) boundRoom(c *client) (*game.Room, uuid.UUID, error) {
	rid, pid := c.bound()
	if rid == uuid.Nil {
		return nil, uuid.Nil, game.ErrNotInRoom
	}
	room := s.Store.Get(rid)
	if room == nil {
		return nil, uuid.Nil, game.ErrRoomNotFound
	}
	return room, pid, nil
}

// wireRoom installs the broadcast callbacks a fresh room needs before it is
// stored.
func (s *Server) wireRoom(room *game.Room) {
	roomID := room.ID
	room.BroadcastFn = func(ev game.RoomEvent) {
		s.broadcastToRoom(roomID, ev)
	}
	room.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.RoomEvent) {
		s.sendToPlayer(playerID, ev)
	}
}

// broadcastToRoom marshals once and queues the frame on every connection
// bound to the room.
func (s *Server) broadcastToRoom(roomID uuid.UUID, ev game.RoomEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		logrus.Errorf("marshal %s event: %v", ev.Type, err)
		return
	}
	s.mu.RLock()
	for c := range s.clients {
		c.mu.Lock()
		match := c.roomID == roomID
		c.mu.Unlock()
		if match {
			c.enqueue(b)
		}
	}
	s.mu.RUnlock()
}

// sendToPlayer queues a frame on the single connection bound to a player id.
func (s *Server) sendToPlayer(playerID uuid.UUID, ev game.RoomEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		logrus.Errorf("marshal %s event: %v", ev.Type, err)
		return
	}
	s.mu.RLock()
	c := s.registry[playerID]
	s.mu.RUnlock()
	if c != nil {
		c.enqueue(b)
	}
}

// pushChatHistory sends the retained backlog to one client.
func (s *Server) pushChatHistory(c *client, roomID uuid.UUID) {
	lines := s.Chat.History(roomID)
	if len(lines) == 0 {
		return
	}
	b, err := json.Marshal(game.RoomEvent{Type: game.EventChatHistory, Lines: lines})
	if err != nil {
		logrus.Errorf("marshal chat history: %v", err)
		return
	}
	c.enqueue(b)
}

// leaveCurrentRoom detaches the client from whatever room it is in,
// unseating the player and destroying the room when the last seat empties.
// Safe to call when the client is not in a room.
func (s *Server) leaveCurrentRoom(c *client) {
	c.mu.Lock()
	rid, pid := c.roomID, c.playerID
	c.roomID, c.playerID = uuid.Nil, uuid.Nil
	c.mu.Unlock()
	if rid == uuid.Nil {
		return
	}

	s.mu.Lock()
	if s.registry[pid] == c {
		delete(s.registry, pid)
	}
	s.mu.Unlock()

	room := s.Store.Get(rid)
	if room == nil {
		return
	}
	room.RemovePlayer(pid)
	if room.PlayerCount() == 0 {
		s.Store.Remove(rid)
		s.Chat.Drop(rid)
		logrus.Infof("room %s destroyed, last player left", rid)
	}
}

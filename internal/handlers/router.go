// internal/handlers/router.go
package handlers

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Zeller74/villain-sub001/internal/auth"
	"github.com/Zeller74/villain-sub001/internal/game"
	"github.com/Zeller74/villain-sub001/internal/models"
)

// maxNameLen truncates display names, counted in runes.
const maxNameLen = 32

// dispatch routes one inbound frame to its handler.
func (s *Server) dispatch(c *client, f *clientFrame) {
	switch f.Type {
	case "session:hello":
		s.handleHello(c, f)
	case "room:create":
		s.handleCreateRoom(c, f)
	case "room:join":
		s.handleJoinRoom(c, f)
	case "room:leave":
		s.handleLeaveRoom(c, f)
	case "player:ready":
		s.handleReady(c, f)
	case "player:character":
		s.handleCharacter(c, f)
	case "game:start":
		s.handleStartGame(c, f)
	case "game:end":
		s.handleEndGame(c, f)
	case "turn:end":
		s.handleEndTurn(c, f)
	case "card:draw":
		s.handleDraw(c, f)
	case "card:play":
		s.handlePlay(c, f)
	case "card:discard":
		s.handleDiscard(c, f)
	case "card:move":
		s.handleMove(c, f)
	case "card:remove":
		s.handleRemove(c, f)
	case "deck:reshuffle":
		s.handleReshuffle(c, f)
	case "game:undo":
		s.handleUndo(c, f)
	case "chat:send":
		s.handleChatSend(c, f)
	case "chat:history":
		s.handleChatHistory(c, f)
	default:
		s.ackError(c, f, "unknown event type")
	}
}

// ackOK acknowledges a frame, merging any extras into the payload. Frames
// sent without an ack id get nothing back.
func (s *Server) ackOK(c *client, f *clientFrame, extra map[string]interface{}) {
	if f.Ack == 0 {
		return
	}
	data := map[string]interface{}{"ok": true}
	for k, v := range extra {
		data[k] = v
	}
	b, err := json.Marshal(ackFrame{Type: "ack", Ack: f.Ack, Data: data})
	if err != nil {
		logrus.Errorf("marshal ack: %v", err)
		return
	}
	c.enqueue(b)
}

// ackError rejects a frame with a message safe to show the user.
func (s *Server) ackError(c *client, f *clientFrame, msg string) {
	if f.Ack == 0 {
		logrus.Debugf("unacked %s rejected: %s", f.Type, msg)
		return
	}
	b, err := json.Marshal(ackFrame{Type: "ack", Ack: f.Ack, Data: map[string]interface{}{"ok": false, "error": msg}})
	if err != nil {
		logrus.Errorf("marshal ack: %v", err)
		return
	}
	c.enqueue(b)
}

// handleHello establishes or restores the connection's session identity and
// returns a token the client presents on its next connection.
func (s *Server) handleHello(c *client, f *clientFrame) {
	var req helloRequest
	if err := decodePayload(f.Data, &req); err != nil {
		s.ackError(c, f, "malformed payload")
		return
	}

	name := trimName(req.Name)
	var sid models.SessionID
	if req.Token != "" {
		id, tokenName, err := auth.VerifySessionToken(req.Token)
		if err != nil {
			logrus.Debugf("session token rejected: %v", err)
		} else {
			sid = id
			if name == "" {
				name = tokenName
			}
		}
	}
	if sid.IsNil() {
		sid = models.NewSessionID()
	}

	token, err := auth.IssueSessionToken(sid, name)
	if err != nil {
		logrus.Errorf("issue session token: %v", err)
		s.ackError(c, f, "could not issue session token")
		return
	}

	c.mu.Lock()
	c.sessionID = sid
	c.name = name
	c.mu.Unlock()

	s.ackOK(c, f, map[string]interface{}{"sessionId": sid.String(), "token": token})
}

// handleCreateRoom opens a new room with the caller as its owner and first
// seat. Supplying a passcode locks the room to those who know it.
func (s *Server) handleCreateRoom(c *client, f *clientFrame) {
	var req createRoomRequest
	if err := decodePayload(f.Data, &req); err != nil {
		s.ackError(c, f, "malformed payload")
		return
	}
	sid, sessionName := c.session()
	if sid.IsNil() {
		s.ackError(c, f, "no session, send session:hello first")
		return
	}
	name := trimName(req.Name)
	if name == "" {
		name = sessionName
	}
	if name == "" {
		s.ackError(c, f, "player name is required")
		return
	}

	room := game.NewRoom()
	if req.Passcode != "" {
		hash, err := auth.HashPasscode(req.Passcode)
		if err != nil {
			logrus.Errorf("hash passcode: %v", err)
			s.ackError(c, f, "could not secure the room")
			return
		}
		room.PasscodeHash = hash
	}
	s.wireRoom(room)

	p, err := room.AddPlayer(name, sid)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}

	s.leaveCurrentRoom(c)
	s.Store.Add(room)
	s.bind(c, room.ID, p.ID)
	room.Sync()

	logrus.Infof("room %s created by %s", room.ID, name)
	s.ackOK(c, f, map[string]interface{}{"roomId": room.ID.String(), "playerId": p.ID.String()})
}

// handleJoinRoom seats the caller in an existing room. Seats are lobby-only
// and passcode-gated.
func (s *Server) handleJoinRoom(c *client, f *clientFrame) {
	var req joinRoomRequest
	if err := decodePayload(f.Data, &req); err != nil {
		s.ackError(c, f, "malformed payload")
		return
	}
	sid, sessionName := c.session()
	if sid.IsNil() {
		s.ackError(c, f, "no session, send session:hello first")
		return
	}
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		s.ackError(c, f, "invalid room id")
		return
	}
	room := s.Store.Get(roomID)
	if room == nil {
		s.ackError(c, f, game.ErrRoomNotFound.Error())
		return
	}

	if room.PasscodeHash != "" && !auth.VerifyPasscode(req.Passcode, room.PasscodeHash) {
		s.ackError(c, f, "wrong passcode")
		return
	}
	name := trimName(req.Name)
	if name == "" {
		name = sessionName
	}
	if name == "" {
		s.ackError(c, f, "player name is required")
		return
	}

	p, err := room.AddPlayer(name, sid)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	s.leaveCurrentRoom(c)
	s.bind(c, room.ID, p.ID)
	room.Sync()
	s.pushChatHistory(c, room.ID)

	s.ackOK(c, f, map[string]interface{}{"roomId": room.ID.String(), "playerId": p.ID.String()})
}

// handleLeaveRoom unseats the caller. Unlike a dropped connection, leaving
// gives the seat up for good.
func (s *Server) handleLeaveRoom(c *client, f *clientFrame) {
	s.leaveCurrentRoom(c)
	s.ackOK(c, f, nil)
}

func (s *Server) handleReady(c *client, f *clientFrame) {
	var req readyRequest
	if err := decodePayload(f.Data, &req); err != nil {
		s.ackError(c, f, "malformed payload")
		return
	}
	room, pid, err := s.boundRoom(c)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	if err := room.SetReady(pid, req.Ready); err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	s.ackOK(c, f, nil)
}

func (s *Server) handleCharacter(c *client, f *clientFrame) {
	var req characterRequest
	if err := decodePayload(f.Data, &req); err != nil {
		s.ackError(c, f, "malformed payload")
		return
	}
	room, pid, err := s.boundRoom(c)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	if err := room.SetCharacter(pid, req.CharacterID); err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	s.ackOK(c, f, nil)
}

func (s *Server) handleStartGame(c *client, f *clientFrame) {
	room, pid, err := s.boundRoom(c)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	if err := room.StartGame(pid); err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	s.ackOK(c, f, nil)
}

func (s *Server) handleEndGame(c *client, f *clientFrame) {
	room, pid, err := s.boundRoom(c)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	if err := room.EndGame(pid); err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	s.ackOK(c, f, nil)
}

func (s *Server) handleEndTurn(c *client, f *clientFrame) {
	room, pid, err := s.boundRoom(c)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	if err := room.EndTurn(pid); err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	s.ackOK(c, f, nil)
}

func (s *Server) handleDraw(c *client, f *clientFrame) {
	var req drawRequest
	if err := decodePayload(f.Data, &req); err != nil {
		s.ackError(c, f, "malformed payload")
		return
	}
	room, pid, err := s.boundRoom(c)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	drawn, err := room.Draw(pid, req.Count)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	ids := make([]string, len(drawn))
	for i, id := range drawn {
		ids[i] = id.String()
	}
	s.ackOK(c, f, map[string]interface{}{"cardIds": ids, "count": len(ids)})
}

func (s *Server) handlePlay(c *client, f *clientFrame) {
	var req playRequest
	if err := decodePayload(f.Data, &req); err != nil {
		s.ackError(c, f, "malformed payload")
		return
	}
	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		s.ackError(c, f, "invalid card id")
		return
	}
	room, pid, err := s.boundRoom(c)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	if err := room.Play(pid, cardID, req.Location); err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	s.ackOK(c, f, nil)
}

func (s *Server) handleDiscard(c *client, f *clientFrame) {
	var req discardRequest
	if err := decodePayload(f.Data, &req); err != nil {
		s.ackError(c, f, "malformed payload")
		return
	}
	raw := req.CardIDs
	if req.CardID != "" {
		raw = append([]string{req.CardID}, raw...)
	}
	if len(raw) == 0 {
		s.ackError(c, f, "no cards named")
		return
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		id, err := uuid.Parse(v)
		if err != nil {
			s.ackError(c, f, "invalid card id")
			return
		}
		ids = append(ids, id)
	}
	room, pid, err := s.boundRoom(c)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	discarded, err := room.Discard(pid, ids)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	out := make([]string, len(discarded))
	for i, id := range discarded {
		out[i] = id.String()
	}
	s.ackOK(c, f, map[string]interface{}{"cardIds": out})
}

func (s *Server) handleMove(c *client, f *clientFrame) {
	var req moveRequest
	if err := decodePayload(f.Data, &req); err != nil {
		s.ackError(c, f, "malformed payload")
		return
	}
	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		s.ackError(c, f, "invalid card id")
		return
	}
	room, pid, err := s.boundRoom(c)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	if err := room.Move(pid, cardID, req.From, req.To); err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	s.ackOK(c, f, nil)
}

func (s *Server) handleRemove(c *client, f *clientFrame) {
	var req removeRequest
	if err := decodePayload(f.Data, &req); err != nil {
		s.ackError(c, f, "malformed payload")
		return
	}
	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		s.ackError(c, f, "invalid card id")
		return
	}
	room, pid, err := s.boundRoom(c)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	if err := room.Remove(pid, cardID, req.From); err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	s.ackOK(c, f, nil)
}

func (s *Server) handleReshuffle(c *client, f *clientFrame) {
	room, pid, err := s.boundRoom(c)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	moved, err := room.Reshuffle(pid)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	s.ackOK(c, f, map[string]interface{}{"count": moved})
}

func (s *Server) handleUndo(c *client, f *clientFrame) {
	room, pid, err := s.boundRoom(c)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	if err := room.Undo(pid); err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	s.ackOK(c, f, nil)
}

func (s *Server) handleChatSend(c *client, f *clientFrame) {
	var req chatSendRequest
	if err := decodePayload(f.Data, &req); err != nil {
		s.ackError(c, f, "malformed payload")
		return
	}
	room, pid, err := s.boundRoom(c)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	name, ok := room.PlayerName(pid)
	if !ok {
		s.ackError(c, f, game.ErrNotInRoom.Error())
		return
	}
	msg, err := s.Chat.Post(room.ID, pid, name, req.Text)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	s.broadcastToRoom(room.ID, game.RoomEvent{Type: game.EventChatMessage, Chat: &msg})
	s.ackOK(c, f, map[string]interface{}{"messageId": msg.ID.String()})
}

func (s *Server) handleChatHistory(c *client, f *clientFrame) {
	room, _, err := s.boundRoom(c)
	if err != nil {
		s.ackError(c, f, err.Error())
		return
	}
	s.pushChatHistory(c, room.ID)
	s.ackOK(c, f, nil)
}

// trimName normalizes a display name, truncating at maxNameLen runes.
func trimName(name string) string {
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > maxNameLen {
		name = string(runes[:maxNameLen])
	}
	return name
}

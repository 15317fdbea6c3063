// internal/game/room.go
package game

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zeller74/villain-sub001/internal/cache"
	"github.com/Zeller74/villain-sub001/internal/database"
	"github.com/Zeller74/villain-sub001/internal/models"
)

// MaxPlayers caps how many seats a room offers.
const MaxPlayers = 6

// StarterDeckSize is how many cards each player's deck holds at game start.
const StarterDeckSize = 15

// LogCap bounds the action log; the oldest entry is evicted once full.
const LogCap = 25

// RoomEventType names an outbound event pushed to clients.
type RoomEventType string

// Constants defining the outbound RoomEvent types.
const (
	EventRoomState   RoomEventType = "room:state"   // Public: full shared projection.
	EventRoomSelf    RoomEventType = "room:self"    // Private: the viewer's own hand plus counts.
	EventRoomLog     RoomEventType = "room:log"     // Public: rendered action feed, newest first.
	EventChatMessage RoomEventType = "chat:msg"     // Public: one chat line.
	EventChatHistory RoomEventType = "chat:history" // Private: retained chat backlog on join.
)

// RoomEvent is the structure broadcast to room members. Exactly one of the
// payload fields is set, matching Type.
type RoomEvent struct {
	Type RoomEventType `json:"type"`

	State *RoomState           `json:"state,omitempty"`
	Self  *SelfState           `json:"self,omitempty"`
	Feed  []string             `json:"feed,omitempty"`
	Chat  *models.ChatMessage  `json:"chat,omitempty"`
	Lines []models.ChatMessage `json:"chatHistory,omitempty"`
}

// Room is the authoritative state for one table: seated players in turn
// order, the game phase, and the bounded action log. Exported methods take
// Mu; unexported helpers assume it is already held.
type Room struct {
	ID      uuid.UUID
	OwnerID uuid.UUID

	Players []*models.Player // Seat order doubles as turn order.
	Game    models.GameMeta
	Log     []*models.ActionEntry

	// PasscodeHash is set once at creation for passcode-gated rooms and never
	// mutated afterwards. Empty means the room is open.
	PasscodeHash string

	CreatedAt time.Time

	rng       *rand.Rand
	actionSeq int

	Mu sync.Mutex

	// Communication callbacks, wired by the transport layer.
	BroadcastFn         func(ev RoomEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev RoomEvent)
}

// NewRoom creates an empty room in the lobby phase.
func NewRoom() *Room {
	id, _ := uuid.NewRandom()
	return &Room{
		ID:        id,
		Game:      models.GameMeta{Phase: models.PhaseLobby, Turn: 1},
		Log:       []*models.ActionEntry{},
		CreatedAt: time.Now(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AddPlayer seats a new player. Only allowed in the lobby; the first seat
// becomes the owner. The caller is responsible for broadcasting afterwards,
// once its transport binding for the new player id is in place.
func (r *Room) AddPlayer(name string, session models.SessionID) (*models.Player, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Game.Phase != models.PhaseLobby {
		return nil, ErrGameStarted
	}
	if len(r.Players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	for _, p := range r.Players {
		if p.Session == session {
			return nil, ErrAlreadySeated
		}
	}

	id, _ := uuid.NewRandom()
	p := &models.Player{
		ID:      id,
		Name:    name,
		Board:   models.NewBoard(),
		Deck:    []*models.Card{},
		Hand:    []*models.Card{},
		Discard: []*models.Card{},
		Session: session,
	}
	r.Players = append(r.Players, p)
	if len(r.Players) == 1 {
		r.OwnerID = p.ID
	}
	log.Printf("Room %s: player %s (%s) seated.", r.ID, p.ID, p.Name)
	return p, nil
}

// RemovePlayer unseats a player, handing ownership and the active turn to the
// new first seat when the departing player held either. Removing an unknown
// player is a no-op, so disconnect cleanup can run more than once.
func (r *Room) RemovePlayer(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	idx := -1
	for i, p := range r.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	name := r.Players[idx].Name
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	log.Printf("Room %s: player %s (%s) left.", r.ID, playerID, name)

	if len(r.Players) == 0 {
		r.OwnerID = uuid.Nil
		r.Game.ActivePlayerID = uuid.Nil
		return
	}
	if r.OwnerID == playerID {
		r.OwnerID = r.Players[0].ID
		log.Printf("Room %s: ownership passed to %s.", r.ID, r.OwnerID)
	}
	if r.Game.ActivePlayerID == playerID {
		r.Game.ActivePlayerID = r.Players[0].ID
		log.Printf("Room %s: active turn passed to %s.", r.ID, r.Game.ActivePlayerID)
	}
	r.broadcastRoomSync()
}

// SetReady flips a player's ready flag while the room is still in the lobby.
func (r *Room) SetReady(playerID uuid.UUID, ready bool) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Game.Phase != models.PhaseLobby {
		return ErrGameStarted
	}
	p := r.getPlayerByID(playerID)
	if p == nil {
		return ErrNotInRoom
	}
	p.Ready = ready
	r.broadcastRoomSync()
	return nil
}

// SetCharacter records a player's character pick while in the lobby. An empty
// id clears the pick.
func (r *Room) SetCharacter(playerID uuid.UUID, characterID string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Game.Phase != models.PhaseLobby {
		return ErrGameStarted
	}
	p := r.getPlayerByID(playerID)
	if p == nil {
		return ErrNotInRoom
	}
	p.CharacterID = characterID
	r.broadcastRoomSync()
	return nil
}

// StartGame moves the room from lobby to playing: fresh starter decks, empty
// hands and discards, reset boards, turn one, first seat active. Only the
// owner may start, and only with at least two seated players, all ready.
func (r *Room) StartGame(callerID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Game.Phase != models.PhaseLobby {
		return ErrGameStarted
	}
	if callerID != r.OwnerID {
		return ErrNotOwner
	}
	if len(r.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	for _, p := range r.Players {
		if !p.Ready {
			return ErrNotAllReady
		}
	}

	for _, p := range r.Players {
		p.Deck = r.newStarterDeck(p.Name)
		p.Hand = []*models.Card{}
		p.Discard = []*models.Card{}
		p.Board = models.NewBoard()
	}
	r.Game.Phase = models.PhasePlaying
	r.Game.Turn = 1
	r.Game.ActivePlayerID = r.Players[0].ID
	log.Printf("Room %s: game started with %d players.", r.ID, len(r.Players))

	r.broadcastRoomSync()
	return nil
}

// EndGame moves the room from playing to ended. Ended is terminal; the final
// board state stays visible but no further action is accepted. Only the owner
// may end the game. A summary is archived when Postgres is configured.
func (r *Room) EndGame(callerID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Game.Phase != models.PhasePlaying {
		return ErrNotPlaying
	}
	if callerID != r.OwnerID {
		return ErrNotOwner
	}

	r.Game.Phase = models.PhaseEnded
	r.Game.ActivePlayerID = uuid.Nil
	log.Printf("Room %s: game ended after %d turns.", r.ID, r.Game.Turn)

	r.persistFinishedGame()
	r.broadcastRoomSync()
	return nil
}

// Sync rebroadcasts every projection. The transport layer calls this after it
// finishes binding a freshly seated player.
func (r *Room) Sync() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.broadcastRoomSync()
}

// PlayerCount returns the number of seated players.
func (r *Room) PlayerCount() int {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return len(r.Players)
}

// PlayerName resolves a seated player's display name.
func (r *Room) PlayerName(playerID uuid.UUID) (string, bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if p := r.getPlayerByID(playerID); p != nil {
		return p.Name, true
	}
	return "", false
}

// newStarterDeck builds a player's deck at game start: fresh ids, placeholder
// labels derived from the player's name, face down, shuffled once.
// Assumes lock is held by caller.
func (r *Room) newStarterDeck(ownerName string) []*models.Card {
	deck := make([]*models.Card, 0, StarterDeckSize)
	for i := 1; i <= StarterDeckSize; i++ {
		id, _ := uuid.NewRandom()
		deck = append(deck, &models.Card{ID: id, Label: fmt.Sprintf("%s's card %d", ownerName, i)})
	}
	r.shuffleCards(deck)
	return deck
}

// shuffleCards permutes cards in place with the room's rng (Fisher-Yates).
// The same shuffle serves deck creation, auto-reshuffle, and explicit
// reshuffle.
// Assumes lock is held by caller.
func (r *Room) shuffleCards(cards []*models.Card) {
	r.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// getPlayerByID returns the seated player with the given id, or nil.
// Assumes lock is held by caller.
func (r *Room) getPlayerByID(playerID uuid.UUID) *models.Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// appendEntry adds an entry to the bounded log, evicting from the front once
// the cap is reached, and mirrors the entry to the audit queue.
// Assumes lock is held by caller.
func (r *Room) appendEntry(actorID uuid.UUID, data models.ActionData) *models.ActionEntry {
	entry := &models.ActionEntry{
		ID:      uuid.New(),
		ActorID: actorID,
		Kind:    data.Kind(),
		Data:    data,
		At:      time.Now(),
	}
	r.Log = append(r.Log, entry)
	if len(r.Log) > LogCap {
		r.Log = r.Log[len(r.Log)-LogCap:]
	}
	r.publishAction(entry)
	return entry
}

// publishAction queues an applied entry for the historian over Redis.
// The publish runs without the room lock and carries its own copy of the
// record. No-op when Redis is not configured.
// Assumes lock is held by caller.
func (r *Room) publishAction(entry *models.ActionEntry) {
	r.actionSeq++
	record := cache.RoomActionRecord{
		RoomID:    r.ID,
		Seq:       r.actionSeq,
		ActorID:   entry.ActorID,
		Kind:      string(entry.Kind),
		Data:      entry.Data,
		Timestamp: entry.At.UnixMilli(),
	}

	go func(rec cache.RoomActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cache.Rdb == nil {
			return
		}
		if err := cache.PublishRoomAction(ctx, rec); err != nil {
			log.Printf("Error: Room %s: failed publishing action %d (%s) to Redis: %v", rec.RoomID, rec.Seq, rec.Kind, err)
		}
	}(record)
}

// persistFinishedGame archives a summary of the completed game.
// Assumes lock is held by caller.
func (r *Room) persistFinishedGame() {
	summary := database.FinishedGame{
		RoomID:  r.ID,
		OwnerID: r.OwnerID,
		Turns:   r.Game.Turn,
		EndedAt: time.Now(),
	}
	for _, p := range r.Players {
		summary.Players = append(summary.Players, database.FinishedPlayer{
			ID:          p.ID,
			Name:        p.Name,
			CharacterID: p.CharacterID,
		})
	}

	if database.DB != nil {
		go func(fg database.FinishedGame) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.StoreFinishedGame(ctx, fg); err != nil {
				log.Printf("Error: Room %s: failed archiving finished game: %v", fg.RoomID, err)
			}
		}(summary)
	}
}

// broadcastRoomSync pushes the public projection, every member's private
// view, and the rendered feed. Called after each successful mutation.
// Assumes lock is held by caller.
func (r *Room) broadcastRoomSync() {
	state := r.PublicState()
	r.fireEvent(RoomEvent{Type: EventRoomState, State: &state})
	for _, p := range r.Players {
		if self := r.SelfStateFor(p.ID); self != nil {
			r.fireEventToPlayer(p.ID, RoomEvent{Type: EventRoomSelf, Self: self})
		}
	}
	r.fireEvent(RoomEvent{Type: EventRoomLog, Feed: r.RenderFeed()})
}

// fireEvent broadcasts an event to all members via the BroadcastFn callback.
// Assumes lock is held by caller.
func (r *Room) fireEvent(ev RoomEvent) {
	if r.BroadcastFn != nil {
		r.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends an event to a single member via the
// BroadcastToPlayerFn callback.
// Assumes lock is held by caller.
func (r *Room) fireEventToPlayer(playerID uuid.UUID, ev RoomEvent) {
	if r.BroadcastToPlayerFn != nil {
		r.BroadcastToPlayerFn(playerID, ev)
	}
}

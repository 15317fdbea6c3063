// internal/game/store.go
package game

import (
	"sync"

	"github.com/google/uuid"
)

// RoomStore holds every live room. One store is constructed at startup and
// injected into whatever needs room lookup; rooms enter on creation and leave
// when their last player does. The store never reaches into a room while
// holding its own lock, keeping the lock order room.Mu before store.mu safe.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]*Room
}

// NewRoomStore returns an empty store.
func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[uuid.UUID]*Room)}
}

// Add registers a room under its id.
func (s *RoomStore) Add(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID] = r
}

// Get returns the room with the given id, or nil.
func (s *RoomStore) Get(id uuid.UUID) *Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[id]
}

// Remove drops a room from the store. Removing an absent id is a no-op.
func (s *RoomStore) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// Count returns the number of live rooms.
func (s *RoomStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

package models

import (
	"github.com/google/uuid"
)

// Player is a seated member of a room. Zone slices are ordered: the deck top
// is the last element, the discard top is the last element, and the hand keeps
// insertion order for storage even though play treats it as a set.
//
// The zone contents never cross the wire directly; the state projector decides
// per viewer what is revealed.
type Player struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Ready       bool      `json:"ready"`
	CharacterID string    `json:"characterId,omitempty"`

	Deck    []*Card `json:"-"`
	Hand    []*Card `json:"-"`
	Discard []*Card `json:"-"`
	Board   Board   `json:"board"`

	// Session is the transport-independent identity this seat is bound to.
	// It is distinct from ID so a future transport can rebind a seat without
	// touching game state.
	Session SessionID `json:"-"`
}

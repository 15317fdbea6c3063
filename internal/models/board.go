package models

import (
	"fmt"

	"github.com/google/uuid"
)

// NumLocations is the fixed number of locations on every player board.
const NumLocations = 4

// Location is one column of a player's board. Both stacks are always publicly
// visible. Current actions only ever touch Bottom; Top is reserved for
// fate-style plays against the player.
type Location struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Locked bool      `json:"locked"`
	Bottom []*Card   `json:"bottom"`
	Top    []*Card   `json:"top"`
}

// Board is a player's play area: exactly four locations plus the mover token
// position. MoverAt is carried for clients only; no action reads or writes it.
type Board struct {
	Locations [NumLocations]Location `json:"locations"`
	MoverAt   int                    `json:"moverAt"`
}

// NewBoard returns a board with four fresh, empty, unlocked locations.
func NewBoard() Board {
	var b Board
	for i := range b.Locations {
		id, _ := uuid.NewRandom()
		b.Locations[i] = Location{
			ID:     id,
			Name:   fmt.Sprintf("Location %d", i+1),
			Bottom: []*Card{},
			Top:    []*Card{},
		}
	}
	return b
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a single room chat line.
type ChatMessage struct {
	ID       uuid.UUID `json:"id"`
	RoomID   uuid.UUID `json:"roomId"`
	PlayerID uuid.UUID `json:"playerId"`
	Name     string    `json:"name"`
	Text     string    `json:"text"`
	Sent     time.Time `json:"sent"`
}

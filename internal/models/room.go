package models

import "github.com/google/uuid"

// Phase is the lifecycle stage of a room's game.
type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhasePlaying Phase = "playing"
	PhaseEnded   Phase = "ended"
)

// GameMeta is the turn-tracking state of a room. ActivePlayerID is uuid.Nil
// outside the playing phase.
type GameMeta struct {
	Phase          Phase     `json:"phase"`
	Turn           int       `json:"turn"`
	ActivePlayerID uuid.UUID `json:"activePlayerId,omitempty"`
}

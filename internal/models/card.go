package models

import "github.com/google/uuid"

// Card is a single game card. Identity is fixed at creation; FaceUp is a
// display hint for clients, not an access control. Visibility of hidden zones
// is enforced by the state projector.
type Card struct {
	ID     uuid.UUID `json:"id"`
	Label  string    `json:"label"`
	FaceUp bool      `json:"faceUp"`
}

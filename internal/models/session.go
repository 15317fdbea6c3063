package models

import (
	"github.com/google/uuid"
)

// SessionID identifies a client session independently of any player seat.
// A session can outlive the websocket connection that introduced it; player
// ids are scoped to a single room membership and die with it.
type SessionID uuid.UUID

// NewSessionID returns a fresh random session identity.
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// ParseSessionID parses the canonical string form.
func ParseSessionID(s string) (SessionID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return SessionID(uuid.Nil), err
	}
	return SessionID(u), nil
}

// IsNil reports whether the identity is unset.
func (s SessionID) IsNil() bool {
	return uuid.UUID(s) == uuid.Nil
}

func (s SessionID) String() string {
	return uuid.UUID(s).String()
}

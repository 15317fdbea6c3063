package models

import (
	"time"

	"github.com/google/uuid"
)

// ActionKind tags an ActionEntry with the action that produced it.
type ActionKind string

const (
	ActionDraw      ActionKind = "draw"
	ActionPlay      ActionKind = "play"
	ActionDiscard   ActionKind = "discard"
	ActionMove      ActionKind = "move"
	ActionRemove    ActionKind = "remove"
	ActionReshuffle ActionKind = "reshuffle"
	ActionUndo      ActionKind = "undo"
)

// ActionData is the per-kind payload of an ActionEntry. Exactly one concrete
// type exists per kind, carrying only that kind's fields; the undo engine
// dispatches on the concrete type, never on field presence.
type ActionData interface {
	Kind() ActionKind
}

// DrawData records the ids actually drawn, in draw order.
type DrawData struct {
	CardIDs []uuid.UUID `json:"cardIds"`
}

func (*DrawData) Kind() ActionKind { return ActionDraw }

// PlayData records a card played from hand to a board location.
type PlayData struct {
	CardID   uuid.UUID `json:"cardId"`
	Location int       `json:"location"`
}

func (*PlayData) Kind() ActionKind { return ActionPlay }

// DiscardData records the ids actually discarded, in the order processed.
// Requested ids that were not in hand are not recorded.
type DiscardData struct {
	CardIDs []uuid.UUID `json:"cardIds"`
}

func (*DiscardData) Kind() ActionKind { return ActionDiscard }

// MoveData records a card relocated between two board locations. FromIndex is
// the position the card held in the source stack, kept so an undo can restore
// ordering; ToIndex is the destination length before the append.
type MoveData struct {
	CardID    uuid.UUID `json:"cardId"`
	From      int       `json:"from"`
	To        int       `json:"to"`
	FromIndex int       `json:"fromIndex"`
	ToIndex   int       `json:"toIndex"`
}

func (*MoveData) Kind() ActionKind { return ActionMove }

// RemoveData records a card sent from a board location to the discard pile.
type RemoveData struct {
	CardID    uuid.UUID `json:"cardId"`
	From      int       `json:"from"`
	FromIndex int       `json:"fromIndex"`
}

func (*RemoveData) Kind() ActionKind { return ActionRemove }

// ReshuffleData records how many discard cards went back into the deck.
type ReshuffleData struct {
	Count int `json:"count"`
}

func (*ReshuffleData) Kind() ActionKind { return ActionReshuffle }

// UndoData references the entry that was compensated.
type UndoData struct {
	TargetID uuid.UUID `json:"targetId"`
}

func (*UndoData) Kind() ActionKind { return ActionUndo }

// ActionEntry is one record in a room's bounded action log. Entries are
// append-only except for Undone, which flips to true at most once.
type ActionEntry struct {
	ID      uuid.UUID  `json:"id"`
	ActorID uuid.UUID  `json:"actorId"`
	Kind    ActionKind `json:"kind"`
	Data    ActionData `json:"data"`
	At      time.Time  `json:"at"`
	Undone  bool       `json:"undone"`
}

// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"

	"github.com/Zeller74/villain-sub001/internal/models"
)

// CardView is a fully revealed card inside a projection. Views copy card
// values so a queued broadcast can never observe a later mutation.
type CardView struct {
	ID     uuid.UUID `json:"id"`
	Label  string    `json:"label"`
	FaceUp bool      `json:"faceUp"`
}

// LocationView is one board column. Board contents are public for every
// viewer, both stacks included.
type LocationView struct {
	ID     uuid.UUID  `json:"id"`
	Name   string     `json:"name"`
	Locked bool       `json:"locked"`
	Bottom []CardView `json:"bottom"`
	Top    []CardView `json:"top"`
}

// BoardView is the public rendering of a player's board.
type BoardView struct {
	Locations [models.NumLocations]LocationView `json:"locations"`
	MoverAt   int                               `json:"moverAt"`
}

// PlayerView is the public rendering of a seated player: zone counts instead
// of hidden contents, the discard top card, and the full board.
type PlayerView struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Ready        bool      `json:"ready"`
	CharacterID  string    `json:"characterId,omitempty"`
	DeckCount    int       `json:"deckCount"`
	HandCount    int       `json:"handCount"`
	DiscardCount int       `json:"discardCount"`
	DiscardTop   *CardView `json:"discardTop,omitempty"`
	Board        BoardView `json:"board"`
}

// RoomState is the shared projection broadcast to every member after each
// mutation. It never carries deck or hand contents.
type RoomState struct {
	RoomID         uuid.UUID    `json:"roomId"`
	OwnerID        uuid.UUID    `json:"ownerId"`
	Phase          models.Phase `json:"phase"`
	Turn           int          `json:"turn"`
	ActivePlayerID uuid.UUID    `json:"activePlayerId,omitempty"`
	Players        []PlayerView `json:"players"`
}

// SelfState is the private projection for one seat: the full hand plus the
// same counts every viewer already has. Deck contents are never projected,
// not even to their owner.
type SelfState struct {
	PlayerID     uuid.UUID  `json:"playerId"`
	Hand         []CardView `json:"hand"`
	DeckCount    int        `json:"deckCount"`
	HandCount    int        `json:"handCount"`
	DiscardCount int        `json:"discardCount"`
}

// PublicState builds the shared projection from the current room state.
// Assumes lock is held by caller.
func (r *Room) PublicState() RoomState {
	state := RoomState{
		RoomID:         r.ID,
		OwnerID:        r.OwnerID,
		Phase:          r.Game.Phase,
		Turn:           r.Game.Turn,
		ActivePlayerID: r.Game.ActivePlayerID,
		Players:        make([]PlayerView, len(r.Players)),
	}
	for i, p := range r.Players {
		pv := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Ready:        p.Ready,
			CharacterID:  p.CharacterID,
			DeckCount:    len(p.Deck),
			HandCount:    len(p.Hand),
			DiscardCount: len(p.Discard),
			Board:        boardView(&p.Board),
		}
		if len(p.Discard) > 0 {
			top := cardView(p.Discard[len(p.Discard)-1])
			pv.DiscardTop = &top
		}
		state.Players[i] = pv
	}
	return state
}

// SelfStateFor builds the private projection for one seat, or nil if the
// player is not in the room.
// Assumes lock is held by caller.
func (r *Room) SelfStateFor(playerID uuid.UUID) *SelfState {
	p := r.getPlayerByID(playerID)
	if p == nil {
		return nil
	}
	self := &SelfState{
		PlayerID:     p.ID,
		Hand:         make([]CardView, len(p.Hand)),
		DeckCount:    len(p.Deck),
		HandCount:    len(p.Hand),
		DiscardCount: len(p.Discard),
	}
	for i, c := range p.Hand {
		self.Hand[i] = cardView(c)
	}
	return self
}

func cardView(c *models.Card) CardView {
	return CardView{ID: c.ID, Label: c.Label, FaceUp: c.FaceUp}
}

func boardView(b *models.Board) BoardView {
	bv := BoardView{MoverAt: b.MoverAt}
	for i := range b.Locations {
		loc := &b.Locations[i]
		lv := LocationView{
			ID:     loc.ID,
			Name:   loc.Name,
			Locked: loc.Locked,
			Bottom: make([]CardView, len(loc.Bottom)),
			Top:    make([]CardView, len(loc.Top)),
		}
		for j, c := range loc.Bottom {
			lv.Bottom[j] = cardView(c)
		}
		for j, c := range loc.Top {
			lv.Top[j] = cardView(c)
		}
		bv.Locations[i] = lv
	}
	return bv
}

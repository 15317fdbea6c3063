// internal/game/actions.go
package game

import (
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/Zeller74/villain-sub001/internal/models"
)

// MaxDrawCount caps how many cards a single draw request can take; requested
// counts are clamped into [1, MaxDrawCount] rather than rejected.
const MaxDrawCount = 5

// Validation failures returned by room operations. The transport layer passes
// the message through as the acknowledgement error string; none of them leave
// any state change behind.
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrNotInRoom         = errors.New("you are not in this room")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrNotPlaying        = errors.New("game is not in progress")
	ErrGameStarted       = errors.New("game already started")
	ErrRoomFull          = errors.New("room is full")
	ErrAlreadySeated     = errors.New("session already seated in this room")
	ErrNotOwner          = errors.New("only the room owner can do that")
	ErrNotEnoughPlayers  = errors.New("need at least 2 players")
	ErrNotAllReady       = errors.New("all players must be ready")
	ErrBadLocation       = errors.New("invalid location index")
	ErrSameLocation      = errors.New("source and destination are the same location")
	ErrCardNotInHand     = errors.New("card not in hand")
	ErrCardNotAtLocation = errors.New("card not at that location")
	ErrDiscardEmpty      = errors.New("discard pile is empty")
)

// requireActive resolves the caller and enforces the gates shared by every
// action kind: the game must be in progress, the caller must be seated, and
// the caller must hold the active turn. Actions only ever touch the caller's
// own zones and board.
// Assumes lock is held by caller.
func (r *Room) requireActive(playerID uuid.UUID) (*models.Player, error) {
	if r.Game.Phase != models.PhasePlaying {
		return nil, ErrNotPlaying
	}
	p := r.getPlayerByID(playerID)
	if p == nil {
		return nil, ErrNotInRoom
	}
	if r.Game.ActivePlayerID != playerID {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// Draw takes up to count cards from the caller's deck into their hand. The
// count is clamped to [1, MaxDrawCount]. An empty deck is refilled from the
// discard pile before each unit; if both piles are exhausted the draw stops
// early with whatever it got. Returns the drawn ids in draw order.
func (r *Room) Draw(playerID uuid.UUID, count int) ([]uuid.UUID, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, err := r.requireActive(playerID)
	if err != nil {
		return nil, err
	}

	if count < 1 {
		count = 1
	} else if count > MaxDrawCount {
		count = MaxDrawCount
	}

	drawn := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		if len(p.Deck) == 0 {
			r.refillDeckFromDiscard(p)
			if len(p.Deck) == 0 {
				break
			}
		}
		card := p.Deck[len(p.Deck)-1]
		p.Deck = p.Deck[:len(p.Deck)-1]
		card.FaceUp = true
		p.Hand = append(p.Hand, card)
		drawn = append(drawn, card.ID)
	}

	if len(drawn) > 0 {
		r.appendEntry(playerID, &models.DrawData{CardIDs: drawn})
	}
	r.broadcastRoomSync()
	return drawn, nil
}

// refillDeckFromDiscard moves the whole discard pile back into the deck face
// down and shuffles the result. Used when a draw finds the deck empty.
// Assumes lock is held by caller.
func (r *Room) refillDeckFromDiscard(p *models.Player) {
	if len(p.Discard) == 0 {
		return
	}
	moved := p.Discard
	p.Discard = []*models.Card{}
	for _, c := range moved {
		c.FaceUp = false
	}
	p.Deck = append(p.Deck, moved...)
	r.shuffleCards(p.Deck)
	log.Printf("Room %s: refilled %s's deck with %d discards.", r.ID, p.Name, len(moved))
}

// Play moves a card from the caller's hand to the bottom stack of one of
// their board locations.
func (r *Room) Play(playerID, cardID uuid.UUID, location int) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, err := r.requireActive(playerID)
	if err != nil {
		return err
	}
	if location < 0 || location >= models.NumLocations {
		return ErrBadLocation
	}
	idx := findInHand(p, cardID)
	if idx < 0 {
		return ErrCardNotInHand
	}

	card := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	card.FaceUp = true
	loc := &p.Board.Locations[location]
	loc.Bottom = append(loc.Bottom, card)

	r.appendEntry(playerID, &models.PlayData{CardID: cardID, Location: location})
	r.broadcastRoomSync()
	return nil
}

// Discard moves the named cards from the caller's hand to their discard pile,
// in request order. Ids not found in hand are skipped silently; the request
// fails only when none resolve. Returns the ids actually discarded.
func (r *Room) Discard(playerID uuid.UUID, cardIDs []uuid.UUID) ([]uuid.UUID, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, err := r.requireActive(playerID)
	if err != nil {
		return nil, err
	}

	resolvable := 0
	for _, id := range cardIDs {
		if findInHand(p, id) >= 0 {
			resolvable++
		}
	}
	if resolvable == 0 {
		return nil, ErrCardNotInHand
	}

	discarded := make([]uuid.UUID, 0, resolvable)
	for _, id := range cardIDs {
		idx := findInHand(p, id)
		if idx < 0 {
			continue
		}
		card := p.Hand[idx]
		p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
		card.FaceUp = true
		p.Discard = append(p.Discard, card)
		discarded = append(discarded, id)
	}

	r.appendEntry(playerID, &models.DiscardData{CardIDs: discarded})
	r.broadcastRoomSync()
	return discarded, nil
}

// Move relocates a card between the bottom stacks of two of the caller's
// board locations. The card always lands on top of the destination stack.
func (r *Room) Move(playerID, cardID uuid.UUID, from, to int) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, err := r.requireActive(playerID)
	if err != nil {
		return err
	}
	if from < 0 || from >= models.NumLocations || to < 0 || to >= models.NumLocations {
		return ErrBadLocation
	}
	if from == to {
		return ErrSameLocation
	}
	src := &p.Board.Locations[from]
	fromIdx := findInBottom(src, cardID)
	if fromIdx < 0 {
		return ErrCardNotAtLocation
	}

	card := src.Bottom[fromIdx]
	src.Bottom = append(src.Bottom[:fromIdx], src.Bottom[fromIdx+1:]...)
	dst := &p.Board.Locations[to]
	toIdx := len(dst.Bottom)
	dst.Bottom = append(dst.Bottom, card)

	r.appendEntry(playerID, &models.MoveData{
		CardID:    cardID,
		From:      from,
		To:        to,
		FromIndex: fromIdx,
		ToIndex:   toIdx,
	})
	r.broadcastRoomSync()
	return nil
}

// Remove takes a card off the bottom stack of one of the caller's board
// locations and puts it on their discard pile.
func (r *Room) Remove(playerID, cardID uuid.UUID, from int) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, err := r.requireActive(playerID)
	if err != nil {
		return err
	}
	if from < 0 || from >= models.NumLocations {
		return ErrBadLocation
	}
	src := &p.Board.Locations[from]
	fromIdx := findInBottom(src, cardID)
	if fromIdx < 0 {
		return ErrCardNotAtLocation
	}

	card := src.Bottom[fromIdx]
	src.Bottom = append(src.Bottom[:fromIdx], src.Bottom[fromIdx+1:]...)
	card.FaceUp = true
	p.Discard = append(p.Discard, card)

	r.appendEntry(playerID, &models.RemoveData{CardID: cardID, From: from, FromIndex: fromIdx})
	r.broadcastRoomSync()
	return nil
}

// Reshuffle folds the caller's entire discard pile back into their deck face
// down and shuffles the whole resulting deck, not just the moved portion.
// Returns how many cards were moved. A reshuffle cannot be undone.
func (r *Room) Reshuffle(playerID uuid.UUID) (int, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, err := r.requireActive(playerID)
	if err != nil {
		return 0, err
	}
	if len(p.Discard) == 0 {
		return 0, ErrDiscardEmpty
	}

	moved := len(p.Discard)
	r.refillDeckFromDiscard(p)

	r.appendEntry(playerID, &models.ReshuffleData{Count: moved})
	r.broadcastRoomSync()
	return moved, nil
}

// EndTurn passes the active turn to the next seat in roster order. The
// caller's index is located fresh so a mid-game departure cannot skew the
// rotation. The turn counter increments when the rotation wraps back to the
// first seat. Ending a turn does not enter the action log.
func (r *Room) EndTurn(playerID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if _, err := r.requireActive(playerID); err != nil {
		return err
	}

	idx := -1
	for i, p := range r.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	next := (idx + 1) % len(r.Players)
	if next == 0 {
		r.Game.Turn++
	}
	r.Game.ActivePlayerID = r.Players[next].ID
	log.Printf("Room %s: turn %d, active player %s.", r.ID, r.Game.Turn, r.Game.ActivePlayerID)

	r.broadcastRoomSync()
	return nil
}

// findInHand returns the index of cardID in the player's hand, or -1.
func findInHand(p *models.Player, cardID uuid.UUID) int {
	for i, c := range p.Hand {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

// findInBottom returns the index of cardID in a location's bottom stack,
// or -1.
func findInBottom(loc *models.Location, cardID uuid.UUID) int {
	for i, c := range loc.Bottom {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

// internal/game/undo.go
package game

import (
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/Zeller74/villain-sub001/internal/models"
)

// Undo rejections. ErrUndoStale covers every case where the forward effect is
// no longer intact where the action left it; a stale undo changes nothing.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrUndoNotYours  = errors.New("only your own last action can be undone")
	ErrAlreadyUndone = errors.New("action already undone")
	ErrUndoReshuffle = errors.New("a reshuffle cannot be undone")
	ErrUndoUndo      = errors.New("an undo cannot be undone")
	ErrUndoStale     = errors.New("cards have moved since that action")
)

// Undo compensates the most recent log entry. Only the chronologically last
// entry qualifies, it must belong to the caller, and it must not already be
// undone. Each inverse verifies the forward effect is fully intact before
// touching anything, so a failed undo leaves the room unchanged. Success
// flips the entry's Undone flag and appends an undo entry referencing it;
// that undo entry is itself never undoable.
func (r *Room) Undo(playerID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Game.Phase != models.PhasePlaying {
		return ErrNotPlaying
	}
	p := r.getPlayerByID(playerID)
	if p == nil {
		return ErrNotInRoom
	}
	if len(r.Log) == 0 {
		return ErrNothingToUndo
	}
	entry := r.Log[len(r.Log)-1]
	if entry.ActorID != playerID {
		return ErrUndoNotYours
	}
	if entry.Undone {
		return ErrAlreadyUndone
	}

	var err error
	switch data := entry.Data.(type) {
	case *models.DrawData:
		err = undoDraw(p, data)
	case *models.PlayData:
		err = undoPlay(p, data)
	case *models.DiscardData:
		err = undoDiscard(p, data)
	case *models.MoveData:
		err = undoMove(p, data)
	case *models.RemoveData:
		err = undoRemove(p, data)
	case *models.ReshuffleData:
		return ErrUndoReshuffle
	case *models.UndoData:
		return ErrUndoUndo
	default:
		return ErrUndoUndo
	}
	if err != nil {
		return err
	}

	entry.Undone = true
	r.appendEntry(playerID, &models.UndoData{TargetID: entry.ID})
	log.Printf("Room %s: %s undid %s entry %s.", r.ID, p.Name, entry.Kind, entry.ID)

	r.broadcastRoomSync()
	return nil
}

// undoDraw returns every drawn card from hand to the deck top, in reverse
// draw order so the original deck order is restored. Fails if any drawn id
// has since left the hand.
func undoDraw(p *models.Player, data *models.DrawData) error {
	for _, id := range data.CardIDs {
		if findInHand(p, id) < 0 {
			return ErrUndoStale
		}
	}
	for i := len(data.CardIDs) - 1; i >= 0; i-- {
		idx := findInHand(p, data.CardIDs[i])
		card := p.Hand[idx]
		p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
		card.FaceUp = false
		p.Deck = append(p.Deck, card)
	}
	return nil
}

// undoPlay pulls the played card back off its recorded location's bottom
// stack and returns it to hand. Fails if the card is no longer there.
func undoPlay(p *models.Player, data *models.PlayData) error {
	loc := &p.Board.Locations[data.Location]
	idx := findInBottom(loc, data.CardID)
	if idx < 0 {
		return ErrUndoStale
	}
	card := loc.Bottom[idx]
	loc.Bottom = append(loc.Bottom[:idx], loc.Bottom[idx+1:]...)
	p.Hand = append(p.Hand, card)
	return nil
}

// undoDiscard pops the discarded cards back into hand, newest first. Every
// recorded id must still sit at its expected depth from the discard top; any
// mismatch aborts before the first pop.
func undoDiscard(p *models.Player, data *models.DiscardData) error {
	n := len(data.CardIDs)
	if len(p.Discard) < n {
		return ErrUndoStale
	}
	top := len(p.Discard)
	for i := 0; i < n; i++ {
		if p.Discard[top-1-i].ID != data.CardIDs[n-1-i] {
			return ErrUndoStale
		}
	}
	for i := 0; i < n; i++ {
		card := p.Discard[len(p.Discard)-1]
		p.Discard = p.Discard[:len(p.Discard)-1]
		p.Hand = append(p.Hand, card)
	}
	return nil
}

// undoMove sends the card from the destination back into the source bottom
// stack at its original index, clamped if the stack shrank in the meantime.
// Fails if the card is no longer at the destination.
func undoMove(p *models.Player, data *models.MoveData) error {
	dst := &p.Board.Locations[data.To]
	idx := findInBottom(dst, data.CardID)
	if idx < 0 {
		return ErrUndoStale
	}
	card := dst.Bottom[idx]
	dst.Bottom = append(dst.Bottom[:idx], dst.Bottom[idx+1:]...)
	insertBottom(&p.Board.Locations[data.From], card, data.FromIndex)
	return nil
}

// undoRemove pops the card off the discard top and re-inserts it into the
// source location at its original index, clamped. Fails unless the card is
// exactly on top of the discard.
func undoRemove(p *models.Player, data *models.RemoveData) error {
	if len(p.Discard) == 0 || p.Discard[len(p.Discard)-1].ID != data.CardID {
		return ErrUndoStale
	}
	card := p.Discard[len(p.Discard)-1]
	p.Discard = p.Discard[:len(p.Discard)-1]
	insertBottom(&p.Board.Locations[data.From], card, data.FromIndex)
	return nil
}

// insertBottom places a card at idx in a location's bottom stack, clamping
// idx to the stack's current bounds.
func insertBottom(loc *models.Location, card *models.Card, idx int) {
	if idx < 0 {
		idx = 0
	}
	if idx > len(loc.Bottom) {
		idx = len(loc.Bottom)
	}
	loc.Bottom = append(loc.Bottom, nil)
	copy(loc.Bottom[idx+1:], loc.Bottom[idx:])
	loc.Bottom[idx] = card
}

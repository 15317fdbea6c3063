// internal/game/actions_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zeller74/villain-sub001/internal/models"
)

// TestDrawClampAndOrder verifies count clamping and that cards come off the
// top of the deck in order.
func TestDrawClampAndOrder(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2)
	alice := players[0]

	deckBefore := append([]*models.Card{}, alice.Deck...)

	drawn, err := r.Draw(alice.ID, 0)
	require.NoError(t, err)
	assert.Len(t, drawn, 1, "a zero count should be clamped up to one")
	assert.Equal(t, deckBefore[len(deckBefore)-1].ID, drawn[0], "draw should take the deck top")

	drawn, err = r.Draw(alice.ID, 99)
	require.NoError(t, err)
	assert.Len(t, drawn, MaxDrawCount, "an oversized count should be clamped down")
	for i, id := range drawn {
		assert.Equal(t, deckBefore[len(deckBefore)-2-i].ID, id, "drawn card %d out of deck order", i)
	}

	assert.Len(t, alice.Deck, StarterDeckSize-6)
	assert.Len(t, alice.Hand, 6)
	for _, c := range alice.Hand {
		assert.True(t, c.FaceUp, "cards in hand should be face up")
	}

	entry := r.Log[len(r.Log)-1]
	assert.Equal(t, models.ActionDraw, entry.Kind)
	assert.Equal(t, drawn, entry.Data.(*models.DrawData).CardIDs)
}

// TestDrawAutoReshuffle verifies an empty deck is refilled from the discard
// pile inside the draw itself, with only the draw entering the log.
func TestDrawAutoReshuffle(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2)
	alice := players[0]

	// Tip the whole deck into the discard pile.
	alice.Discard = append([]*models.Card{}, alice.Deck...)
	alice.Deck = []*models.Card{}

	logBefore := len(r.Log)
	drawn, err := r.Draw(alice.ID, 3)
	require.NoError(t, err)
	require.Len(t, drawn, 3)

	assert.Len(t, alice.Deck, StarterDeckSize-3)
	assert.Empty(t, alice.Discard, "the refill should consume the whole discard pile")
	assert.Len(t, alice.Hand, 3)
	assert.Equal(t, StarterDeckSize, countZones(alice))

	require.Len(t, r.Log, logBefore+1, "the refill itself must not appear in the log")
	assert.Equal(t, models.ActionDraw, r.Log[len(r.Log)-1].Kind)
}

// TestDrawStopsWhenExhausted verifies a draw returns what it managed to take
// when deck and discard run dry part way through.
func TestDrawStopsWhenExhausted(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2)
	alice := players[0]

	// Leave two cards in the deck and nothing in the discard pile.
	alice.Hand = append(alice.Hand, alice.Deck[:StarterDeckSize-2]...)
	alice.Deck = append([]*models.Card{}, alice.Deck[StarterDeckSize-2:]...)

	drawn, err := r.Draw(alice.ID, 5)
	require.NoError(t, err)
	assert.Len(t, drawn, 2)
	assert.Empty(t, alice.Deck)
	assert.Len(t, r.Log[len(r.Log)-1].Data.(*models.DrawData).CardIDs, 2)
}

// TestDrawNothingAvailable verifies a fully exhausted draw succeeds with an
// empty result and leaves no trace in the log.
func TestDrawNothingAvailable(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2)
	alice := players[0]

	alice.Hand = append(alice.Hand, alice.Deck...)
	alice.Deck = []*models.Card{}

	logBefore := len(r.Log)
	drawn, err := r.Draw(alice.ID, 2)
	require.NoError(t, err)
	assert.Empty(t, drawn)
	assert.Len(t, r.Log, logBefore, "an empty draw must not be logged")
}

// TestPlayToLocation verifies a played card leaves the hand and lands on the
// chosen bottom stack, and that bad inputs are rejected cleanly.
func TestPlayToLocation(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2)
	alice := players[0]

	drawn, err := r.Draw(alice.ID, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, r.Play(alice.ID, drawn[0], -1), ErrBadLocation)
	assert.ErrorIs(t, r.Play(alice.ID, drawn[0], models.NumLocations), ErrBadLocation)
	assert.ErrorIs(t, r.Play(alice.ID, uuid.New(), 0), ErrCardNotInHand)
	assert.Len(t, alice.Hand, 2, "rejected plays must not touch the hand")

	require.NoError(t, r.Play(alice.ID, drawn[0], 2))
	assert.Len(t, alice.Hand, 1)
	loc := alice.Board.Locations[2]
	require.Len(t, loc.Bottom, 1)
	assert.Equal(t, drawn[0], loc.Bottom[0].ID)
	assert.True(t, loc.Bottom[0].FaceUp)

	entry := r.Log[len(r.Log)-1]
	require.Equal(t, models.ActionPlay, entry.Kind)
	assert.Equal(t, 2, entry.Data.(*models.PlayData).Location)
}

// TestDiscardSilentSkip verifies unknown ids are skipped, resolved cards land
// in request order, and an all-miss request fails without side effects.
func TestDiscardSilentSkip(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2)
	alice := players[0]

	drawn, err := r.Draw(alice.ID, 3)
	require.NoError(t, err)

	discarded, err := r.Discard(alice.ID, []uuid.UUID{drawn[0], uuid.New(), drawn[2]})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{drawn[0], drawn[2]}, discarded)
	require.Len(t, alice.Hand, 1)
	assert.Equal(t, drawn[1], alice.Hand[0].ID)
	require.Len(t, alice.Discard, 2)
	assert.Equal(t, drawn[2], alice.Discard[len(alice.Discard)-1].ID, "last discarded card should sit on top")

	entry := r.Log[len(r.Log)-1]
	require.Equal(t, models.ActionDiscard, entry.Kind)
	assert.Equal(t, discarded, entry.Data.(*models.DiscardData).CardIDs)

	logBefore := len(r.Log)
	_, err = r.Discard(alice.ID, []uuid.UUID{uuid.New(), uuid.New()})
	assert.ErrorIs(t, err, ErrCardNotInHand)
	assert.Len(t, alice.Hand, 1)
	assert.Len(t, r.Log, logBefore, "a failed discard must not be logged")
}

// TestMoveBetweenLocations verifies the moved card is appended to the
// destination stack and the guards around indices.
func TestMoveBetweenLocations(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2)
	alice := players[0]

	drawn, err := r.Draw(alice.ID, 3)
	require.NoError(t, err)
	require.NoError(t, r.Play(alice.ID, drawn[0], 0))
	require.NoError(t, r.Play(alice.ID, drawn[1], 1))
	require.NoError(t, r.Play(alice.ID, drawn[2], 1))

	assert.ErrorIs(t, r.Move(alice.ID, drawn[0], 0, 0), ErrSameLocation)
	assert.ErrorIs(t, r.Move(alice.ID, drawn[0], 1, 0), ErrCardNotAtLocation)
	assert.ErrorIs(t, r.Move(alice.ID, drawn[0], -1, 2), ErrBadLocation)
	assert.ErrorIs(t, r.Move(alice.ID, drawn[0], 0, models.NumLocations), ErrBadLocation)

	require.NoError(t, r.Move(alice.ID, drawn[0], 0, 1))
	assert.Empty(t, alice.Board.Locations[0].Bottom)
	dst := alice.Board.Locations[1].Bottom
	require.Len(t, dst, 3)
	assert.Equal(t, drawn[0], dst[2].ID, "moved card should land on top of the destination")

	entry := r.Log[len(r.Log)-1]
	require.Equal(t, models.ActionMove, entry.Kind)
	data := entry.Data.(*models.MoveData)
	assert.Equal(t, 0, data.From)
	assert.Equal(t, 1, data.To)
	assert.Equal(t, 0, data.FromIndex)
	assert.Equal(t, 2, data.ToIndex)
}

// TestRemoveFromLocation verifies removal sends the card to the top of the
// caller's discard pile.
func TestRemoveFromLocation(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2)
	alice := players[0]

	drawn, err := r.Draw(alice.ID, 2)
	require.NoError(t, err)
	require.NoError(t, r.Play(alice.ID, drawn[0], 3))
	_, err = r.Discard(alice.ID, []uuid.UUID{drawn[1]})
	require.NoError(t, err)

	assert.ErrorIs(t, r.Remove(alice.ID, drawn[0], 1), ErrCardNotAtLocation)
	require.NoError(t, r.Remove(alice.ID, drawn[0], 3))

	assert.Empty(t, alice.Board.Locations[3].Bottom)
	require.Len(t, alice.Discard, 2)
	top := alice.Discard[len(alice.Discard)-1]
	assert.Equal(t, drawn[0], top.ID)
	assert.True(t, top.FaceUp)
}

// TestReshuffleFoldsDiscardIntoDeck verifies the whole discard pile returns
// to the deck and the empty-pile guard.
func TestReshuffleFoldsDiscardIntoDeck(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2)
	alice := players[0]

	_, err := r.Reshuffle(alice.ID)
	assert.ErrorIs(t, err, ErrDiscardEmpty)

	drawn, err := r.Draw(alice.ID, 3)
	require.NoError(t, err)
	_, err = r.Discard(alice.ID, drawn[:2])
	require.NoError(t, err)
	require.Len(t, alice.Discard, 2)

	deckIDs := map[uuid.UUID]bool{}
	for _, c := range alice.Deck {
		deckIDs[c.ID] = true
	}
	deckIDs[drawn[0]] = true
	deckIDs[drawn[1]] = true

	moved, err := r.Reshuffle(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	assert.Empty(t, alice.Discard)
	require.Len(t, alice.Deck, len(deckIDs))
	for _, c := range alice.Deck {
		assert.True(t, deckIDs[c.ID], "unexpected card %s in deck", c.ID)
		assert.False(t, c.FaceUp, "deck cards should be face down")
	}

	entry := r.Log[len(r.Log)-1]
	require.Equal(t, models.ActionReshuffle, entry.Kind)
	assert.Equal(t, 2, entry.Data.(*models.ReshuffleData).Count)
}

// TestEndTurnRotation verifies the turn passes in seat order, the counter
// bumps on wrap, and nothing is logged.
func TestEndTurnRotation(t *testing.T) {
	r, players, _ := setupTestRoom(t, 3)
	logBefore := len(r.Log)

	require.NoError(t, r.EndTurn(players[0].ID))
	assert.Equal(t, players[1].ID, r.Game.ActivePlayerID)
	assert.Equal(t, 1, r.Game.Turn)

	require.NoError(t, r.EndTurn(players[1].ID))
	assert.Equal(t, players[2].ID, r.Game.ActivePlayerID)
	assert.Equal(t, 1, r.Game.Turn)

	require.NoError(t, r.EndTurn(players[2].ID))
	assert.Equal(t, players[0].ID, r.Game.ActivePlayerID)
	assert.Equal(t, 2, r.Game.Turn, "wrapping to the first seat advances the turn count")

	assert.Len(t, r.Log, logBefore, "turn changes must not enter the action log")
}

// TestTurnExclusivity verifies every gated action rejects a seated player who
// does not hold the turn, and an outsider entirely, without side effects.
func TestTurnExclusivity(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2)
	alice, bob := players[0], players[1]

	// Give Bob real cards to name so only the turn gate can be the reason.
	require.NoError(t, r.EndTurn(alice.ID))
	bobDrawn, err := r.Draw(bob.ID, 2)
	require.NoError(t, err)
	require.NoError(t, r.Play(bob.ID, bobDrawn[0], 0))
	require.NoError(t, r.EndTurn(bob.ID))

	logBefore := len(r.Log)
	handBefore := len(bob.Hand)
	deckBefore := len(bob.Deck)

	_, err = r.Draw(bob.ID, 1)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.ErrorIs(t, r.Play(bob.ID, bobDrawn[1], 0), ErrNotYourTurn)
	_, err = r.Discard(bob.ID, []uuid.UUID{bobDrawn[1]})
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.ErrorIs(t, r.Move(bob.ID, bobDrawn[0], 0, 1), ErrNotYourTurn)
	assert.ErrorIs(t, r.Remove(bob.ID, bobDrawn[0], 0), ErrNotYourTurn)
	_, err = r.Reshuffle(bob.ID)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.ErrorIs(t, r.EndTurn(bob.ID), ErrNotYourTurn)

	assert.Len(t, r.Log, logBefore)
	assert.Len(t, bob.Hand, handBefore)
	assert.Len(t, bob.Deck, deckBefore)
	assert.Len(t, bob.Board.Locations[0].Bottom, 1)

	_, err = r.Draw(uuid.New(), 1)
	assert.ErrorIs(t, err, ErrNotInRoom)
}

// TestActionsRejectedInLobby verifies the playing-phase gate fires before
// anything else.
func TestActionsRejectedInLobby(t *testing.T) {
	r, players, _ := setupLobbyRoom(t, 2)
	_, err := r.Draw(players[0].ID, 1)
	assert.ErrorIs(t, err, ErrNotPlaying)
	assert.ErrorIs(t, r.EndTurn(players[0].ID), ErrNotPlaying)
	assert.ErrorIs(t, r.Undo(players[0].ID), ErrNotPlaying)
}

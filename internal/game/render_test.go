// internal/game/render_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenderFeedTemplates verifies each action kind renders its fixed line,
// locations are one-based, and the feed reads newest first.
func TestRenderFeedTemplates(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2)
	alice := players[0]

	first, err := r.Draw(alice.ID, 2)
	require.NoError(t, err)
	second, err := r.Draw(alice.ID, 1)
	require.NoError(t, err)
	require.NoError(t, r.Play(alice.ID, first[0], 1))
	_, err = r.Discard(alice.ID, []uuid.UUID{first[1]})
	require.NoError(t, err)
	third, err := r.Draw(alice.ID, 2)
	require.NoError(t, err)
	_, err = r.Discard(alice.ID, []uuid.UUID{second[0], third[0]})
	require.NoError(t, err)
	require.NoError(t, r.Move(alice.ID, first[0], 1, 2))
	require.NoError(t, r.Remove(alice.ID, first[0], 2))
	_, err = r.Reshuffle(alice.ID)
	require.NoError(t, err)

	expected := []string{
		"PlayerA shuffled 4 cards back into their deck",
		"PlayerA removed a card from location 3",
		"PlayerA moved a card from location 2 to location 3",
		"PlayerA discarded 2 cards",
		"PlayerA drew 2 cards",
		"PlayerA discarded a card",
		"PlayerA played a card to location 2",
		"PlayerA drew a card",
		"PlayerA drew 2 cards",
	}
	assert.Equal(t, expected, r.RenderFeed())
}

// TestRenderUndoneCollapses verifies an undone entry loses its original line
// and shows the generic undo text instead.
func TestRenderUndoneCollapses(t *testing.T) {
	r, players, _ := setupTestRoom(t, 2)
	alice := players[0]

	_, err := r.Draw(alice.ID, 2)
	require.NoError(t, err)
	require.NoError(t, r.Undo(alice.ID))

	feed := r.RenderFeed()
	require.Len(t, feed, 2)
	assert.Equal(t, "PlayerA undid their last action", feed[0])
	assert.Equal(t, "PlayerA undid their last action", feed[1], "the undone draw must not render its own line")
}

// TestRenderDepartedActor verifies entries from a player who has left fall
// back to a truncated id.
func TestRenderDepartedActor(t *testing.T) {
	r, players, _ := setupTestRoom(t, 3)
	alice := players[0]

	_, err := r.Draw(alice.ID, 1)
	require.NoError(t, err)
	r.RemovePlayer(alice.ID)

	feed := r.RenderFeed()
	require.Len(t, feed, 1)
	assert.Equal(t, alice.ID.String()[:8]+" drew a card", feed[0])
}

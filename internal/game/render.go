// internal/game/render.go
package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Zeller74/villain-sub001/internal/models"
)

// RenderFeed returns the rendered action feed, most recent first. The log is
// already capped, so the feed is at most LogCap lines.
// Assumes lock is held by caller.
func (r *Room) RenderFeed() []string {
	feed := make([]string, 0, len(r.Log))
	for i := len(r.Log) - 1; i >= 0; i-- {
		feed = append(feed, r.renderEntry(r.Log[i]))
	}
	return feed
}

// renderEntry formats one log line from a fixed template per kind. Lines are
// role-agnostic and never mention hidden card details. An entry that has been
// undone collapses to the generic undo line whatever its original kind.
// Assumes lock is held by caller.
func (r *Room) renderEntry(e *models.ActionEntry) string {
	name := r.actorName(e.ActorID)
	if e.Undone {
		return fmt.Sprintf("%s undid their last action", name)
	}
	switch data := e.Data.(type) {
	case *models.DrawData:
		if len(data.CardIDs) == 1 {
			return fmt.Sprintf("%s drew a card", name)
		}
		return fmt.Sprintf("%s drew %d cards", name, len(data.CardIDs))
	case *models.PlayData:
		return fmt.Sprintf("%s played a card to location %d", name, data.Location+1)
	case *models.DiscardData:
		if len(data.CardIDs) == 1 {
			return fmt.Sprintf("%s discarded a card", name)
		}
		return fmt.Sprintf("%s discarded %d cards", name, len(data.CardIDs))
	case *models.MoveData:
		return fmt.Sprintf("%s moved a card from location %d to location %d", name, data.From+1, data.To+1)
	case *models.RemoveData:
		return fmt.Sprintf("%s removed a card from location %d", name, data.From+1)
	case *models.ReshuffleData:
		return fmt.Sprintf("%s shuffled %d cards back into their deck", name, data.Count)
	case *models.UndoData:
		return fmt.Sprintf("%s undid their last action", name)
	default:
		return fmt.Sprintf("%s performed %s", name, e.Kind)
	}
}

// actorName resolves an actor to a display name, falling back to a truncated
// id when the player has since left the room.
// Assumes lock is held by caller.
func (r *Room) actorName(actorID uuid.UUID) string {
	if p := r.getPlayerByID(actorID); p != nil {
		return p.Name
	}
	return actorID.String()[:8]
}

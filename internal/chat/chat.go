// internal/chat/chat.go
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Zeller74/villain-sub001/internal/database"
	"github.com/Zeller74/villain-sub001/internal/models"
)

// HistoryLimit caps how many lines a room retains in memory.
const HistoryLimit = 50

// MaxMessageLen truncates overlong messages, counted in runes.
const MaxMessageLen = 500

// ErrEmptyMessage is returned for messages that are blank after trimming.
var ErrEmptyMessage = errors.New("empty message")

// Broker keeps a bounded per-room chat history in memory. History lives and
// dies with the room; the optional Postgres archive is the only thing that
// outlasts it.
type Broker struct {
	mu      sync.Mutex
	history map[uuid.UUID][]models.ChatMessage
}

// NewBroker returns an empty broker.
func NewBroker() *Broker {
	return &Broker{history: make(map[uuid.UUID][]models.ChatMessage)}
}

// Post validates and records a message, returning the stamped copy for
// broadcast. Overlong text is truncated, not rejected.
func (b *Broker) Post(roomID, playerID uuid.UUID, name, text string) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}
	if runes := []rune(text); len(runes) > MaxMessageLen {
		text = string(runes[:MaxMessageLen])
	}

	msg := models.ChatMessage{
		ID:       uuid.New(),
		RoomID:   roomID,
		PlayerID: playerID,
		Name:     name,
		Text:     text,
		Sent:     time.Now(),
	}

	b.mu.Lock()
	lines := append(b.history[roomID], msg)
	if len(lines) > HistoryLimit {
		lines = lines[len(lines)-HistoryLimit:]
	}
	b.history[roomID] = lines
	b.mu.Unlock()

	if database.DB != nil {
		go func(m models.ChatMessage) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.ArchiveChatMessage(ctx, m); err != nil {
				logrus.Warnf("chat archive failed for room %s: %v", m.RoomID, err)
			}
		}(msg)
	}
	return msg, nil
}

// History returns a copy of the room's retained lines, oldest first.
func (b *Broker) History(roomID uuid.UUID) []models.ChatMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	lines := b.history[roomID]
	out := make([]models.ChatMessage, len(lines))
	copy(out, lines)
	return out
}

// Drop forgets a room's history once the room is destroyed.
func (b *Broker) Drop(roomID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.history, roomID)
}

// internal/database/database.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/Zeller74/villain-sub001/internal/models"
)

// DB is the shared connection pool. It stays nil when Postgres is not
// configured; archive writes are skipped in that case. Live room state is
// never persisted here, only after-the-fact records.
var DB *pgxpool.Pool

// InitDB connects the pool and ensures the archive tables exist. An empty URL
// leaves the pool nil and archiving disabled.
func InitDB(ctx context.Context, databaseURL string) error {
	if databaseURL == "" {
		logrus.Info("DATABASE_URL not set; archive disabled")
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}
	DB = pool
	if err := ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	logrus.Info("Connected to Postgres; archive enabled")
	return nil
}

func ensureSchema(ctx context.Context) error {
	_, err := DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS finished_games (
			room_id  UUID PRIMARY KEY,
			owner_id UUID NOT NULL,
			players  JSONB NOT NULL,
			turns    INT NOT NULL,
			ended_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS chat_archive (
			id        UUID PRIMARY KEY,
			room_id   UUID NOT NULL,
			player_id UUID NOT NULL,
			name      TEXT NOT NULL,
			text      TEXT NOT NULL,
			sent_at   TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

// FinishedPlayer is one seat in an archived game summary.
type FinishedPlayer struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CharacterID string    `json:"characterId,omitempty"`
}

// FinishedGame is the archived summary of a completed game.
type FinishedGame struct {
	RoomID  uuid.UUID
	OwnerID uuid.UUID
	Players []FinishedPlayer
	Turns   int
	EndedAt time.Time
}

// StoreFinishedGame archives a completed game summary. No-op without a pool.
func StoreFinishedGame(ctx context.Context, fg FinishedGame) error {
	if DB == nil {
		return nil
	}
	players, err := json.Marshal(fg.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO finished_games (room_id, owner_id, players, turns, ended_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (room_id) DO UPDATE
		SET owner_id = EXCLUDED.owner_id,
		    players  = EXCLUDED.players,
		    turns    = EXCLUDED.turns,
		    ended_at = EXCLUDED.ended_at
	`, fg.RoomID, fg.OwnerID, players, fg.Turns, fg.EndedAt)
	return err
}

// ArchiveChatMessage appends one chat line to the archive. No-op without a
// pool.
func ArchiveChatMessage(ctx context.Context, msg models.ChatMessage) error {
	if DB == nil {
		return nil
	}
	_, err := DB.Exec(ctx, `
		INSERT INTO chat_archive (id, room_id, player_id, name, text, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, msg.ID, msg.RoomID, msg.PlayerID, msg.Name, msg.Text, msg.Sent)
	return err
}

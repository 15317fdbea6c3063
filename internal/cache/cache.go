// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Zeller74/villain-sub001/internal/models"
)

// Rdb is the shared Redis client. It stays nil when Redis is not configured;
// callers treat a nil client as "audit trail disabled" and skip the publish.
var Rdb *redis.Client

// ActionQueueKey is the list the historian consumer drains.
const ActionQueueKey = "room:actions"

// RoomActionRecord is one applied action or undo, queued for the historian.
// Rejected requests are never recorded.
type RoomActionRecord struct {
	RoomID    uuid.UUID         `json:"roomId"`
	Seq       int               `json:"seq"`
	ActorID   uuid.UUID         `json:"actorId"`
	Kind      string            `json:"kind"`
	Data      models.ActionData `json:"data,omitempty"`
	Timestamp int64             `json:"ts"`
}

// InitRedis connects the shared client. An empty URL leaves the client nil
// and the audit trail disabled.
func InitRedis(redisURL string) error {
	if redisURL == "" {
		logrus.Info("REDIS_URL not set; action audit trail disabled")
		return nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	Rdb = client
	logrus.Infof("Connected to Redis at %s", opts.Addr)
	return nil
}

// PublishRoomAction pushes one record onto the audit queue. Safe to call with
// a nil client.
func PublishRoomAction(ctx context.Context, rec RoomActionRecord) error {
	if Rdb == nil {
		return nil
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	return Rdb.LPush(ctx, ActionQueueKey, payload).Err()
}

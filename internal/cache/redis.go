// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ActionQueue is the Redis list the historian consumes game actions from.
const ActionQueue = "loveletter:game_actions"

// GameActionRecord is one entry of a room's action stream.
type GameActionRecord struct {
	GameID        uuid.UUID      `json:"game_id"`
	RoomCode      string         `json:"room_code"`
	ActionIndex   int            `json:"action_index"`
	ActorSession  string         `json:"actor_session,omitempty"` // Empty for game-driven actions.
	ActionType    string         `json:"action_type"`
	ActionPayload map[string]any `json:"action_payload"`
	Timestamp     int64          `json:"timestamp"`
}

// RedisPublisher pushes action records onto ActionQueue.
type RedisPublisher struct {
	Rdb   *redis.Client
	Queue string
}

// ConnectRedis opens a client and verifies it with PING.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	logrus.Infof("Connected to Redis at %s (db %d).", addr, db)
	return rdb, nil
}

// NewRedisPublisher returns a publisher writing to ActionQueue.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{Rdb: rdb, Queue: ActionQueue}
}

// PublishGameAction appends the JSON-encoded record to the queue.
func (p *RedisPublisher) PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if p == nil || p.Rdb == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action %d: %w", rec.ActionIndex, err)
	}
	queue := p.Queue
	if queue == "" {
		queue = ActionQueue
	}
	if err := p.Rdb.RPush(ctx, queue, data).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", queue, err)
	}
	return nil
}

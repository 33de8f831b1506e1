package push

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event is a live message for a connected user's progress UI.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Pusher delivers events to a possibly-absent live connection. TryDeliver
// must never block on or fail the caller: delivery is at-most-once, and a
// false return simply means the user was not connected.
type Pusher interface {
	TryDeliver(ctx context.Context, userID string, event Event) bool
}

const userChannelPrefix = "push:user:"

// UserChannel returns the pub/sub channel name for a user.
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}

type redisPusher struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPusher publishes events to per-user Redis channels. The gateway
// holding the user's live connection subscribes to the same channel.
func NewRedisPusher(client *redis.Client, logger *zap.Logger) Pusher {
	return &redisPusher{client: client, logger: logger}
}

func (p *redisPusher) TryDeliver(ctx context.Context, userID string, event Event) bool {
	if p.client == nil {
		return false
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("push event not serializable", zap.String("type", event.Type), zap.Error(err))
		return false
	}
	receivers, err := p.client.Publish(ctx, UserChannel(userID), body).Result()
	if err != nil {
		p.logger.Debug("live push skipped", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	return receivers > 0
}

type noopPusher struct{}

// NewNoopPusher returns a pusher that reports every user as offline. Used
// when the live channel is not configured.
func NewNoopPusher() Pusher {
	return noopPusher{}
}

func (noopPusher) TryDeliver(context.Context, string, Event) bool {
	return false
}

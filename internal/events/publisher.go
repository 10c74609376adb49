package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel names.
const (
	ChannelOpportunityPosted  = "EVENT_OPPORTUNITY_POSTED"
	ChannelOpportunityUpdated = "EVENT_OPPORTUNITY_UPDATED"
	ChannelOpportunityDeleted = "EVENT_OPPORTUNITY_DELETED"
	ChannelContactReceived    = "EVENT_CONTACT_RECEIVED"
)

// Event is the JSON body published on a channel.
type Event struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes,omitempty"`
	At         time.Time         `json:"at"`
}

// Publisher sends events to subscribers. Publishing is best effort: callers
// log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// redisPublishClient is the slice of *redis.Client the publisher uses.
type redisPublishClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher publishes each event on the channel named by its Type.
type RedisPublisher struct {
	rdb    redisPublishClient
	logger *slog.Logger
}

func NewRedisPublisher(rdb *redis.Client, logger *slog.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, logger: logger}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events: encoding %s: %w", e.Type, err)
	}

	receivers, err := p.rdb.Publish(ctx, e.Type, body).Result()
	if err != nil {
		return fmt.Errorf("events: publishing %s: %w", e.Type, err)
	}

	p.logger.Debug("event published",
		slog.String("type", e.Type),
		slog.String("id", e.ID),
		slog.Int64("receivers", receivers),
	)
	return nil
}

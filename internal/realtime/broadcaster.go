// Package realtime broadcasts cache-invalidation hints to connected
// frontends over a redis pub/sub channel. Delivery is best effort; a
// dropped message only delays the next poll, it never loses data.
package realtime

import (
	"context"
	"encoding/json"
	"time"

	"upboost_crm_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Resource names carried in invalidation messages.
const (
	ResourceLeads        = "leads"
	ResourceAppointments = "appointments"
)

// Kinds of change carried in invalidation messages.
const (
	KindInsert = "insert"
	KindUpdate = "update"
)

// Message is the payload published on the invalidation channel.
type Message struct {
	Resource string    `json:"resource"`
	Kind     string    `json:"kind"`
	At       time.Time `json:"at"`
}

// Broadcaster publishes invalidation messages to redis.
// A nil Broadcaster is valid and drops every message, which keeps
// call sites free of redis-configured checks.
type Broadcaster struct {
	client  *redis.Client
	channel string
	log     *logger.Logger
}

// New creates a Broadcaster publishing on the given channel. Returns nil
// when redisURL is empty so deployments without redis still work.
func New(redisURL, channel string, log *logger.Logger) (*Broadcaster, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &Broadcaster{
		client:  redis.NewClient(opts),
		channel: channel,
		log:     log,
	}, nil
}

// Broadcast publishes an invalidation message. Failures are logged and
// swallowed; broadcast must never fail a business operation.
func (b *Broadcaster) Broadcast(ctx context.Context, resource, kind string) {
	if b == nil {
		return
	}

	payload, err := json.Marshal(Message{Resource: resource, Kind: kind, At: time.Now().UTC()})
	if err != nil {
		return
	}

	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		if b.log != nil {
			b.log.Warn("invalidation broadcast failed", "resource", resource, "error", err)
		}
	}
}

// Close releases the underlying redis connection.
func (b *Broadcaster) Close() error {
	if b == nil {
		return nil
	}
	return b.client.Close()
}

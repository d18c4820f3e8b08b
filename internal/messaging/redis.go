package messaging

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher sends messages with PUBLISH; the topic is the channel.
type RedisPublisher struct {
	client *redis.Client
	owned  bool
}

// NewRedisPublisher publishes through client. When owned is set, Close also
// closes the client.
func NewRedisPublisher(client *redis.Client, owned bool) *RedisPublisher {
	return &RedisPublisher{client: client, owned: owned}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, msg Message) error {
	if p == nil || p.client == nil {
		return errors.New("redis publisher not initialized")
	}
	return p.client.Publish(ctx, topic, msg.Payload).Err()
}

func (p *RedisPublisher) Name() string { return "redis" }

func (p *RedisPublisher) Close() error {
	if p == nil || p.client == nil || !p.owned {
		return nil
	}
	return p.client.Close()
}

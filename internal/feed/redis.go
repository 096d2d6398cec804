package feed

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"catanrig/internal/game"
)

// DefaultChannel is the Redis channel states are published on.
const DefaultChannel = "catanrig:state"

// OpenRedis connects to rawURL and checks the connection.
func OpenRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// RedisPublisher publishes every recorded state as a state event on a Redis
// channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Channel returns the channel name.
func (p *RedisPublisher) Channel() string { return p.channel }

// Record publishes s.
func (p *RedisPublisher) Record(ctx context.Context, s *game.State) error {
	data, err := StateEvent(s)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}
	return nil
}

// Check pings the Redis server.
func (p *RedisPublisher) Check(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

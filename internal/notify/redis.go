package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"cabin_boarding/internal/models"
)

// RedisPublisher publishes events on a Redis channel and keeps per-type
// counters plus the last tick in a hash.
type RedisPublisher struct {
	*eventQueue
	client   *redis.Client
	channel  string
	statsKey string
}

func NewRedisPublisher(client *redis.Client, channel, statsKey string) *RedisPublisher {
	return &RedisPublisher{
		eventQueue: newEventQueue(sinkBuffer),
		client:     client,
		channel:    channel,
		statsKey:   statsKey,
	}
}

func (p *RedisPublisher) Notify(ev models.Event) {
	p.offer(ev)
}

// ResetStats clears the counters, typically when a new run starts.
func (p *RedisPublisher) ResetStats(ctx context.Context) error {
	return p.client.Del(ctx, p.statsKey).Err()
}

// Run publishes queued events until ctx is done.
func (p *RedisPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.ch:
			if err := p.publish(ctx, ev); err != nil {
				log.Printf("redis: publish %s: %v", ev.Type, err)
			}
		}
	}
}

func (p *RedisPublisher) publish(ctx context.Context, ev models.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	pipe := p.client.TxPipeline()
	pipe.Publish(ctx, p.channel, body)
	pipe.HIncrBy(ctx, p.statsKey, string(ev.Type), 1)
	pipe.HSet(ctx, p.statsKey, "tick", ev.Tick)
	_, err = pipe.Exec(ctx)
	return err
}

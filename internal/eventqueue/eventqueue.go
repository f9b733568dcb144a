package eventqueue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"hirepath/api-gateway/config"
	"hirepath/api-gateway/models"
)

// Queue pushes event envelopes onto a Redis list for the ML pipeline to
// consume. The hand-off is best effort: callers are expected to log a failed
// Emit and carry on, the primary write path never depends on it.
type Queue struct {
	client    *redis.Client
	queueName string
}

// New connects a Queue to Redis. The connection is established lazily by the
// client; Ping is only a startup sanity check and its failure is left to the
// caller to decide on.
func New(cfg *config.Config) *Queue {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return &Queue{client: client, queueName: cfg.EventQueue}
}

// Ping verifies the Redis connection.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Emit serializes the envelope and pushes it onto the queue, returning the
// queue length after the push.
func (q *Queue) Emit(ctx context.Context, event models.Event) (int64, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("marshaling event: %w", err)
	}

	length, err := q.client.LPush(ctx, q.queueName, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("pushing to queue %q: %w", q.queueName, err)
	}
	return length, nil
}

// Close releases the Redis connection.
func (q *Queue) Close() error {
	return q.client.Close()
}

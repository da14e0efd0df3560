// Package notify carries ledger change signals between service replicas over Redis pub/sub.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	"github.com/sangkips/creance-pos/pkg/logger"
)

const channelPrefix = "ledger:changed:"

// RedisNotifier publishes one message per committed collection change.
type RedisNotifier struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, log: logger.Component("notify")}
}

var _ ledger.Notifier = (*RedisNotifier)(nil)

func channel(c ledger.Collection) string {
	return channelPrefix + string(c)
}

func (n *RedisNotifier) Publish(ctx context.Context, c ledger.Collection) error {
	payload := time.Now().UTC().Format(time.RFC3339Nano)
	if err := n.rdb.Publish(ctx, channel(c), payload).Err(); err != nil {
		return fmt.Errorf("publish %s change: %w", c, err)
	}
	return nil
}

// Listen subscribes to c and returns once the subscription is confirmed, so no
// message published after Listen returns is missed.
func (n *RedisNotifier) Listen(ctx context.Context, c ledger.Collection) (<-chan struct{}, error) {
	ps := n.rdb.Subscribe(ctx, channel(c))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", c, err)
	}

	out := make(chan struct{}, 1)
	msgs := ps.Channel()
	go func() {
		defer close(out)
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					n.log.Warn().Str("collection", string(c)).Msg("redis change subscription closed")
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

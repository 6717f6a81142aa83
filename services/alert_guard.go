package services

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisAlertGuard is a best-effort duplicate suppressor for alerts that can
// race across concurrent invocations. The authoritative cooldown check is the
// notification-store query; this guard only closes the window between two
// readings arriving at the same moment, before either has written its record.
type RedisAlertGuard struct {
	client *redis.Client
}

func NewRedisAlertGuard(client *redis.Client) *RedisAlertGuard {
	return &RedisAlertGuard{client: client}
}

// Acquire claims the alert key for the ttl. It returns false only when the
// key is already held; Redis errors fail open so an unavailable Redis never
// suppresses a legitimate alert.
func (g *RedisAlertGuard) Acquire(ctx context.Context, key string, ttl time.Duration) bool {
	ok, err := g.client.SetNX(ctx, "safespace:guard:"+key, 1, ttl).Result()
	if err != nil {
		log.Printf("alert guard unavailable, failing open: %v", err)
		return true
	}
	return ok
}

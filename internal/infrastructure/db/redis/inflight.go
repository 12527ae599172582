package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// inFlightTTL bounds how long a crashed request can hold the guard.
const inFlightTTL = 30 * time.Second

// InFlightGuard lets one sign-in per session run at a time.
// Key format: inflight:<key>
type InFlightGuard struct {
	client *redis.Client
}

func NewInFlightGuard(client *redis.Client) *InFlightGuard {
	return &InFlightGuard{client: client}
}

// Acquire reports whether the caller now owns key.
func (g *InFlightGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(key), "1", inFlightTTL).Result()
	if err != nil {
		return false, fmt.Errorf("in-flight acquire: %w", err)
	}
	return ok, nil
}

// Release frees key.
func (g *InFlightGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.key(key)).Err(); err != nil {
		return fmt.Errorf("in-flight release: %w", err)
	}
	return nil
}

func (g *InFlightGuard) key(k string) string {
	return "inflight:" + k
}

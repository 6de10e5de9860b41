package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresentCache is a read-through cache for per-date present lists. Values are
// stored as JSON under attendance:present:<kind>:<date>. Misses and transport
// errors both report a miss so callers fall back to the database.
type PresentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPresentCache builds a cache over an existing redis client.
func NewPresentCache(r *Redis, ttl time.Duration) *PresentCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	return &PresentCache{client: client, ttl: ttl}
}

func presentKey(kind, date string) string {
	return "attendance:present:" + kind + ":" + date
}

// Get loads a cached present list into dst. Returns false on miss.
func (c *PresentCache) Get(ctx context.Context, kind, date string, dst any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, presentKey(kind, date)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// Set stores a present list; failures are ignored, the DB stays authoritative.
func (c *PresentCache) Set(ctx context.Context, kind, date string, v any) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, presentKey(kind, date), raw, c.ttl).Err()
}

// Invalidate drops the cached list for a date after a mark changes it.
func (c *PresentCache) Invalidate(ctx context.Context, kind, date string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, presentKey(kind, date)).Err()
}

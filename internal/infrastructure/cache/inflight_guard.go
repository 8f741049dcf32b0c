// Package cache adapts the shared Redis client to the dispatcher's in-flight guard.
package cache

import (
	"context"
	"sync"
	"time"

	pkgcache "github.com/wekeepgrowing/closerlink/pkg/cache"
)

const (
	keyPrefix  = "msg:"
	defaultTTL = 60 * time.Second
)

// InflightGuard marks a message id as being processed for at most ttl.
type InflightGuard struct {
	client pkgcache.RedisClient
	ttl    time.Duration
	tokens sync.Map // message id -> lock token
}

func NewInflightGuard(client pkgcache.RedisClient, ttl time.Duration) *InflightGuard {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &InflightGuard{
		client: client,
		ttl:    ttl,
	}
}

func (g *InflightGuard) Acquire(ctx context.Context, messageID string) (bool, error) {
	token, ok, err := g.client.Lock(ctx, keyPrefix+messageID, g.ttl)
	if err != nil || !ok {
		return false, err
	}
	g.tokens.Store(messageID, token)
	return true, nil
}

// Release frees the lock taken by Acquire. It is a no-op for ids this guard
// does not hold.
func (g *InflightGuard) Release(ctx context.Context, messageID string) error {
	token, ok := g.tokens.LoadAndDelete(messageID)
	if !ok {
		return nil
	}
	return g.client.Unlock(ctx, keyPrefix+messageID, token.(string))
}

// Package cache implements the service's two-tier look-aside cache: a shared
// Redis tier with an in-process TTL map as fallback. The remote connection is
// attempted once per process; after any remote failure the process stays on
// the fallback for its lifetime. The tiers are never synchronized.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"privacyguard/internal/client"
	"privacyguard/internal/util"
)

const opTimeout = 5 * time.Second

// Remote is the shared cache tier. Satisfied by *client.RedisClient.
type Remote interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Cache is the two-tier client. Construct one per process via New; the
// zero value is not usable.
type Cache struct {
	remote   Remote
	fallback *MemoryCache

	mu        sync.Mutex
	available bool
}

// New wraps an already-connected remote tier. Pass nil when the one-time
// connection attempt failed; the cache then runs purely in-process.
func New(remote Remote) *Cache {
	c := &Cache{
		remote:   remote,
		fallback: NewMemoryCache(),
	}
	c.available = remote != nil
	if !c.available {
		util.Warn("Remote cache unavailable, using in-process fallback for this run")
	}
	return c
}

// Available reports whether the remote tier is still in use.
func (c *Cache) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available
}

// markUnavailable permanently downgrades to the fallback tier. No retry.
func (c *Cache) markUnavailable(op string, err error) {
	c.mu.Lock()
	wasAvailable := c.available
	c.available = false
	c.mu.Unlock()

	if wasAvailable {
		util.Warn("Remote cache failed, degrading to in-process fallback",
			zap.String("op", op),
			zap.Error(err))
	}
}

// Get unmarshals the cached value for key into dest and reports whether it
// was found. Remote failures read as misses.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c.Available() {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()

		raw, err := c.remote.Get(ctx, key)
		if err != nil {
			if errors.Is(err, client.ErrKeyNotFound) {
				return false
			}
			c.markUnavailable("get", err)
			return false
		}
		if err := json.Unmarshal([]byte(raw), dest); err != nil {
			util.Warn("Discarding undecodable cache entry",
				zap.String("key", key),
				zap.Error(err))
			return false
		}
		return true
	}

	raw, ok := c.fallback.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		util.Warn("Discarding undecodable cache entry",
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	return true
}

// Set stores a JSON-serializable value under key for ttl, reporting success.
// A remote failure returns false and downgrades the cache.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		util.Error("Failed to encode cache value",
			zap.String("key", key),
			zap.Error(err))
		return false
	}

	if c.Available() {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()

		if err := c.remote.Set(ctx, key, raw, ttl); err != nil {
			c.markUnavailable("set", err)
			return false
		}
		return true
	}

	c.fallback.Set(key, raw, ttl)
	return true
}

// Delete removes key, reporting whether a delete was performed.
func (c *Cache) Delete(ctx context.Context, key string) bool {
	if c.Available() {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()

		if err := c.remote.Del(ctx, key); err != nil {
			c.markUnavailable("delete", err)
			return false
		}
		return true
	}

	return c.fallback.Delete(key)
}

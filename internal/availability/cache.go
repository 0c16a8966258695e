package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores computed availability views in Redis behind a
// per-business version counter. Invalidation bumps the version, which
// orphans every cached view for that business at once; stock postings
// against a shared component can affect any number of products, so
// per-key deletes would miss dependents.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables
// caching transparently.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func versionKey(businessID int64) string {
	return fmt.Sprintf("availability:version:%d", businessID)
}

func (c *Cache) version(ctx context.Context, businessID int64) (int64, error) {
	ver, err := c.client.Get(ctx, versionKey(businessID)).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, versionKey(businessID), 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

func (c *Cache) resultKey(ctx context.Context, businessID, productID int64) (string, error) {
	ver, err := c.version(ctx, businessID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("availability:%d:%d:v%d", businessID, productID, ver), nil
}

// Get returns the cached view, or false when absent or caching is off.
func (c *Cache) Get(ctx context.Context, businessID, productID int64) (Result, bool) {
	if c == nil || c.client == nil {
		return Result{}, false
	}
	key, err := c.resultKey(ctx, businessID, productID)
	if err != nil {
		return Result{}, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return Result{}, false
	}
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, false
	}
	return result, true
}

// Put stores the computed view. Failures are swallowed; the cache is
// an optimisation, not a source of truth.
func (c *Cache) Put(ctx context.Context, businessID int64, result Result) {
	if c == nil || c.client == nil {
		return
	}
	key, err := c.resultKey(ctx, businessID, result.ProductID)
	if err != nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
}

// InvalidateBusiness orphans every cached availability view for the
// business by bumping its version counter.
func (c *Cache) InvalidateBusiness(ctx context.Context, businessID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey(businessID)).Err()
}

package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheVersionKey = "ledger:version"

// Cache wraps Redis based caching of document listings with versioning
// controls. Concurrent misses for the same key are collapsed.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	if c == nil || c.client == nil {
		return strings.Join(parts, ":"), nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", strings.Join(parts, ":"), ver), nil
}

// FetchDocuments loads a cached document listing or populates it using the
// loader. Misses for the same key share one loader call.
func (c *Cache) FetchDocuments(ctx context.Context, key string, loader func(context.Context) ([]PayableDocument, error)) ([]PayableDocument, error) {
	if loader == nil {
		return nil, errors.New("ledger: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var docs []PayableDocument
		if err := json.Unmarshal(payload, &docs); err == nil {
			return docs, nil
		}
		// Fall through and reload on a corrupt entry.
	} else if err != redis.Nil {
		return nil, err
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		docs, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(docs)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return nil, err
		}
		return docs, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]PayableDocument), nil
}

// Bump invalidates cached listings by incrementing the global version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

// ListKey composes the key for a kind listing.
func ListKey(kind DocumentKind) []string {
	return []string{"ledger", "documents", string(kind)}
}

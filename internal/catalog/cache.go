package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wanderplan/trip-service/internal/models"
)

const cacheTTL = 15 * time.Minute

// cachedStore is a read-through redis cache in front of a Store. Cache
// failures fall back to the underlying store; they never fail a lookup.
type cachedStore struct {
	inner Store
	rdb   *redis.Client
}

// NewCachedStore wraps a store with a redis cache. A nil client returns the
// store unwrapped.
func NewCachedStore(inner Store, rdb *redis.Client) Store {
	if rdb == nil {
		return inner
	}
	return &cachedStore{inner: inner, rdb: rdb}
}

func cacheKey(destination string, slot models.TimeSlot) string {
	return fmt.Sprintf("catalog:%s:%s", destination, slot)
}

func (s *cachedStore) ListBySlot(ctx context.Context, destination string, slot models.TimeSlot) ([]CatalogActivity, error) {
	key := cacheKey(destination, slot)

	if raw, err := s.rdb.Get(ctx, key).Result(); err == nil {
		var rows []CatalogActivity
		if err := json.Unmarshal([]byte(raw), &rows); err == nil {
			return rows, nil
		}
	}

	rows, err := s.inner.ListBySlot(ctx, destination, slot)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(rows); err == nil {
		if err := s.rdb.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
			log.Printf("[Catalog] cache set failed for %s: %v", key, err)
		}
	}

	return rows, nil
}

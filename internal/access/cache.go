// internal/access/cache.go
package access

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ListCache is a short-lived read-through cache for list queries, keyed
// by entity type and actor. It stores marshaled result sets and must
// never be used for single-entity authorization decisions.
type ListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewListCache(rdb *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{rdb: rdb, ttl: ttl}
}

func listKey(entity string, actorID int) string {
	return fmt.Sprintf("%s_list_%d", entity, actorID)
}

// Get loads a cached result set into dest. A miss or any cache error
// returns false; the caller falls through to the store.
func (c *ListCache) Get(ctx context.Context, entity string, actorID int, dest any) bool {
	data, err := c.rdb.Get(ctx, listKey(entity, actorID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Debug().Err(err).Str("entity", entity).Msg("list cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false
	}
	return true
}

func (c *ListCache) Set(ctx context.Context, entity string, actorID int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(entity, actorID), data, c.ttl).Err()
}

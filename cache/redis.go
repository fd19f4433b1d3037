package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"rental-server/entities"
)

const propertyKeyPrefix = "property:"

// RedisCache stores properties as JSON strings under property:<id>.
// Redis failures degrade to cache misses.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
}

// ConnectRedis opens a client and pings it once.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("Redis connection successfully opened.")
	return rdb, nil
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (rc *RedisCache) Get(ctx context.Context, id string) (*entities.Property, bool) {
	raw, err := rc.rdb.Get(ctx, propertyKeyPrefix+id).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[cache] redis get %s: %v", id, err)
		}
		rc.misses.Add(1)
		return nil, false
	}
	var p entities.Property
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		log.Printf("[cache] corrupt entry %s: %v", id, err)
		rc.misses.Add(1)
		return nil, false
	}
	rc.hits.Add(1)
	return &p, true
}

func (rc *RedisCache) Set(ctx context.Context, property *entities.Property) {
	if property == nil {
		return
	}
	body, err := json.Marshal(property)
	if err != nil {
		log.Printf("[cache] encode %s: %v", property.ID, err)
		return
	}
	if err := rc.rdb.Set(ctx, propertyKeyPrefix+property.ID, body, rc.ttl).Err(); err != nil {
		log.Printf("[cache] redis set %s: %v", property.ID, err)
	}
}

func (rc *RedisCache) Invalidate(ctx context.Context, id string) {
	if err := rc.rdb.Del(ctx, propertyKeyPrefix+id).Err(); err != nil {
		log.Printf("[cache] redis del %s: %v", id, err)
	}
}

// Clear deletes every property key and resets the counters.
func (rc *RedisCache) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := rc.rdb.Scan(ctx, cursor, propertyKeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan property keys: %w", err)
		}
		if len(keys) > 0 {
			if err := rc.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete property keys: %w", err)
			}
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	rc.hits.Store(0)
	rc.misses.Store(0)
	return nil
}

func (rc *RedisCache) Stats(ctx context.Context) map[string]interface{} {
	stats := map[string]interface{}{
		"backend":     "redis",
		"hits":        rc.hits.Load(),
		"misses":      rc.misses.Load(),
		"ttl_seconds": rc.ttl.Seconds(),
	}
	var cursor uint64
	entries := 0
	for {
		keys, next, err := rc.rdb.Scan(ctx, cursor, propertyKeyPrefix+"*", 100).Result()
		if err != nil {
			stats["error"] = err.Error()
			return stats
		}
		entries += len(keys)
		if next == 0 {
			break
		}
		cursor = next
	}
	stats["entries"] = entries
	return stats
}

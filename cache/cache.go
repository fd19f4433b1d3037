package cache

import (
	"context"
	"sync"
	"time"

	"rental-server/entities"
)

// PropertyCache is a read-through cache for single-property lookups.
type PropertyCache interface {
	Get(ctx context.Context, id string) (*entities.Property, bool)
	Set(ctx context.Context, property *entities.Property)
	Invalidate(ctx context.Context, id string)
	Stats(ctx context.Context) map[string]interface{}
	Clear(ctx context.Context) error
}

type cachedProperty struct {
	Property entities.Property
	CachedAt time.Time
}

// MemoryCache keeps properties in process memory for ttl.
type MemoryCache struct {
	mu         sync.RWMutex
	properties map[string]cachedProperty
	ttl        time.Duration
	hits       int64
	misses     int64
	now        func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		properties: make(map[string]cachedProperty),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (mc *MemoryCache) Get(ctx context.Context, id string) (*entities.Property, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	entry, ok := mc.properties[id]
	if ok && mc.now().Sub(entry.CachedAt) >= mc.ttl {
		delete(mc.properties, id)
		ok = false
	}
	if !ok {
		mc.misses++
		return nil, false
	}
	mc.hits++

	// hand out a copy so callers cannot mutate the cached entry
	p := entry.Property
	p.Amenities = append(p.Amenities[:0:0], entry.Property.Amenities...)
	p.Images = append(p.Images[:0:0], entry.Property.Images...)
	return &p, true
}

func (mc *MemoryCache) Set(ctx context.Context, property *entities.Property) {
	if property == nil {
		return
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()

	p := *property
	p.Amenities = append(p.Amenities[:0:0], property.Amenities...)
	p.Images = append(p.Images[:0:0], property.Images...)
	mc.properties[property.ID] = cachedProperty{Property: p, CachedAt: mc.now()}
}

func (mc *MemoryCache) Invalidate(ctx context.Context, id string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	delete(mc.properties, id)
}

func (mc *MemoryCache) Stats(ctx context.Context) map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return map[string]interface{}{
		"backend":     "memory",
		"entries":     len(mc.properties),
		"hits":        mc.hits,
		"misses":      mc.misses,
		"ttl_seconds": mc.ttl.Seconds(),
	}
}

// Clear drops every entry and resets the counters.
func (mc *MemoryCache) Clear(ctx context.Context) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.properties = make(map[string]cachedProperty)
	mc.hits, mc.misses = 0, 0
	return nil
}

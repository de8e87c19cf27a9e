// pkg/memcache/plans.go
package memcache

import (
	"sync"
	"time"
)

// PlanCache is a small TTL cache in front of the plan catalog. Plans are
// immutable once seeded, so a short TTL only exists to pick up new catalog
// rows without a restart.
type PlanCache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[string]planEntry
}

type planEntry struct {
	value     interface{}
	expiresAt time.Time
}

func NewPlanCache(ttl time.Duration) *PlanCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PlanCache{
		ttl:  ttl,
		data: make(map[string]planEntry),
	}
}

func (c *PlanCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (c *PlanCache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.data[key] = planEntry{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *PlanCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

package achievement

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Cache limits used when a CacheConfig field is zero.
const (
	DefaultCacheMaxUsers = 10000
	DefaultCacheTTL      = 10 * time.Minute
)

// CacheConfig bounds a MemoryCache.
type CacheConfig struct {
	// MaxUsers is the number of users kept; the least recently used go first.
	MaxUsers int
	// TTL is how long a loaded set is trusted before it is read again from
	// the durable store.
	TTL time.Duration
}

type cacheEntry struct {
	userID   uuid.UUID
	set      UnlockSet
	loadedAt time.Time
}

// MemoryCache is a LocalState keeping unlocked sets in process memory.
// Entries expire after the configured TTL and the least recently used user
// is evicted once MaxUsers is reached.
type MemoryCache struct {
	mu       sync.Mutex
	maxUsers int
	ttl      time.Duration
	order    *list.List
	entries  map[uuid.UUID]*list.Element
	now      func() time.Time
}

// NewMemoryCache creates an empty MemoryCache with the default limits.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithConfig(CacheConfig{})
}

// NewMemoryCacheWithConfig creates an empty MemoryCache bounded by cfg.
func NewMemoryCacheWithConfig(cfg CacheConfig) *MemoryCache {
	if cfg.MaxUsers <= 0 {
		cfg.MaxUsers = DefaultCacheMaxUsers
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	return &MemoryCache{
		maxUsers: cfg.MaxUsers,
		ttl:      cfg.TTL,
		order:    list.New(),
		entries:  make(map[uuid.UUID]*list.Element),
		now:      time.Now,
	}
}

// Get implements LocalState. The returned set is a copy.
func (c *MemoryCache) Get(userID uuid.UUID) (UnlockSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lookup(userID)
	if !ok {
		return nil, false
	}
	return entry.set.Union(), true
}

// Put implements LocalState.
func (c *MemoryCache) Put(userID uuid.UUID, set UnlockSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[userID]; ok {
		entry := el.Value.(*cacheEntry)
		entry.set = set.Union()
		entry.loadedAt = c.now()
		c.order.MoveToFront(el)
		return
	}

	c.entries[userID] = c.order.PushFront(&cacheEntry{
		userID:   userID,
		set:      set.Union(),
		loadedAt: c.now(),
	})
	for c.order.Len() > c.maxUsers {
		c.remove(c.order.Back())
	}
}

// Mark implements LocalState. The user's set must be loaded and unexpired.
func (c *MemoryCache) Mark(userID uuid.UUID, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lookup(userID)
	if !ok {
		return fmt.Errorf("%w: user %s not loaded", ErrLocalState, userID)
	}
	for _, id := range ids {
		entry.set[id] = struct{}{}
	}
	return nil
}

// Len returns the number of cached users.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// lookup returns a live entry and marks it recently used. Expired entries are
// dropped. Callers hold c.mu.
func (c *MemoryCache) lookup(userID uuid.UUID) (*cacheEntry, bool) {
	el, ok := c.entries[userID]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if c.now().Sub(entry.loadedAt) >= c.ttl {
		c.remove(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return entry, true
}

func (c *MemoryCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*cacheEntry).userID)
}

var _ LocalState = (*MemoryCache)(nil)

package archive

import (
	"container/list"
	"sync"
	"time"

	"github.com/waterfutures/scadasim/pkg/serialize"
)

// decodeCache implements an LRU cache of decoded archive entries.
type decodeCache struct {
	capacity int
	ttl      time.Duration
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	lru      *list.List
}

// cacheEntry represents a cached decoded object.
type cacheEntry struct {
	name      string
	obj       serialize.Serializable
	timestamp time.Time
	element   *list.Element
}

func newDecodeCache(capacity int, ttl time.Duration) *decodeCache {
	return &decodeCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*cacheEntry),
		lru:      list.New(),
	}
}

func (c *decodeCache) get(name string) (serialize.Serializable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[name]
	if !exists {
		return nil, false
	}

	// Check if entry has expired
	if time.Since(entry.timestamp) > c.ttl {
		c.removeLocked(name)
		return nil, false
	}

	// Move to front of LRU list (most recently used)
	c.lru.MoveToFront(entry.element)
	return entry.obj, true
}

func (c *decodeCache) put(name string, obj serialize.Serializable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.entries[name]; exists {
		entry.obj = obj
		entry.timestamp = time.Now()
		c.lru.MoveToFront(entry.element)
		return
	}

	entry := &cacheEntry{
		name:      name,
		obj:       obj,
		timestamp: time.Now(),
	}
	entry.element = c.lru.PushFront(entry)
	c.entries[name] = entry

	// Evict oldest entry if cache is full
	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.removeLocked(oldest.Value.(*cacheEntry).name)
		}
	}
}

func (c *decodeCache) remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(name)
}

// removeLocked removes an entry (must hold lock).
func (c *decodeCache) removeLocked(name string) {
	if entry, exists := c.entries[name]; exists {
		c.lru.Remove(entry.element)
		delete(c.entries, name)
	}
}

func (c *decodeCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

package routing

import "sync"

// resultCache is a bounded LRU cache of routing results keyed by query prefix
// and user id. Entries are keyed by request content, so interleaved writers
// cause at most redundant recomputation, never a wrong result.
type resultCache struct {
	capacity int
	cache    map[string]*cacheEntry
	head     *cacheEntry
	tail     *cacheEntry
	mu       sync.Mutex
}

type cacheEntry struct {
	key   string
	value Result
	prev  *cacheEntry
	next  *cacheEntry
}

func newResultCache(capacity int) *resultCache {
	return &resultCache{
		capacity: capacity,
		cache:    make(map[string]*cacheEntry),
	}
}

func (c *resultCache) get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		return Result{}, false
	}
	c.moveToFront(entry)
	return entry.value, true
}

func (c *resultCache) put(key string, value Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.cache[key]; ok {
		entry.value = value
		c.moveToFront(entry)
		return
	}

	entry := &cacheEntry{key: key, value: value}
	c.cache[key] = entry
	c.addToFront(entry)

	if len(c.cache) > c.capacity {
		c.evictOldest()
	}
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

func (c *resultCache) moveToFront(entry *cacheEntry) {
	if entry == c.head {
		return
	}
	if entry.prev != nil {
		entry.prev.next = entry.next
	}
	if entry.next != nil {
		entry.next.prev = entry.prev
	}
	if entry == c.tail {
		c.tail = entry.prev
	}
	entry.prev = nil
	entry.next = c.head
	if c.head != nil {
		c.head.prev = entry
	}
	c.head = entry
	if c.tail == nil {
		c.tail = entry
	}
}

func (c *resultCache) addToFront(entry *cacheEntry) {
	entry.next = c.head
	if c.head != nil {
		c.head.prev = entry
	}
	c.head = entry
	if c.tail == nil {
		c.tail = entry
	}
}

func (c *resultCache) evictOldest() {
	if c.tail == nil {
		return
	}
	oldest := c.tail
	delete(c.cache, oldest.key)
	c.tail = oldest.prev
	if c.tail != nil {
		c.tail.next = nil
	} else {
		c.head = nil
	}
}

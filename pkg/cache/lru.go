// Package cache provides a size-bounded LRU cache for rendered artifacts.
package cache

import (
	"sync"
	"sync/atomic"
)

// DefaultLRUCacheSize is the default maximum memory size of an LRU cache (32 MB).
const DefaultLRUCacheSize = 32 * 1024 * 1024

// bytesPerKB is the number of bytes in a kilobyte.
const bytesPerKB = 1024.0

// LRU caches byte payloads by key. It tracks memory usage and evicts least
// recently used entries when the limit is exceeded.
type LRU[K comparable] struct {
	mu          sync.Mutex
	entries     map[K]*lruEntry[K]
	head        *lruEntry[K] // Most recently used.
	tail        *lruEntry[K] // Least recently used.
	maxSize     int64
	currentSize int64

	hits   atomic.Int64
	misses atomic.Int64
}

type lruEntry[K comparable] struct {
	key         K
	data        []byte
	accessCount int64
	prev        *lruEntry[K]
	next        *lruEntry[K]
}

func (e *lruEntry[K]) size() int64 {
	return int64(len(e.data))
}

// evictionCost favors keeping small, frequently read entries.
func (e *lruEntry[K]) evictionCost() float64 {
	sizeKB := max(float64(e.size())/bytesPerKB, 1)

	return float64(e.accessCount) / sizeKB
}

// NewLRU creates a cache holding at most maxSize bytes. A non-positive
// maxSize selects DefaultLRUCacheSize.
func NewLRU[K comparable](maxSize int64) *LRU[K] {
	if maxSize <= 0 {
		maxSize = DefaultLRUCacheSize
	}

	return &LRU[K]{
		entries: make(map[K]*lruEntry[K]),
		maxSize: maxSize,
	}
}

// Get returns the payload stored under key.
func (c *LRU[K]) Get(key K) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		return nil, false
	}

	c.hits.Add(1)

	entry.accessCount++
	c.moveToFront(entry)

	return entry.data, true
}

// Put stores a copy of data under key, evicting as needed. Payloads larger
// than the whole cache are not stored.
func (c *LRU[K]) Put(key K, data []byte) {
	size := int64(len(data))
	if size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.currentSize -= entry.size()
		entry.data = append([]byte(nil), data...)
		c.currentSize += size
		entry.accessCount++
		c.moveToFront(entry)

		return
	}

	for c.currentSize+size > c.maxSize && c.tail != nil {
		c.evictLowestCost()
	}

	entry := &lruEntry[K]{
		key:         key,
		data:        append([]byte(nil), data...),
		accessCount: 1,
	}

	c.entries[key] = entry
	c.currentSize += size
	c.addToFront(entry)
}

// Stats returns cache statistics.
func (c *LRU[K]) Stats() LRUStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return LRUStats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Entries:     len(c.entries),
		CurrentSize: c.currentSize,
		MaxSize:     c.maxSize,
	}
}

// LRUStats holds cache performance metrics.
type LRUStats struct {
	Hits        int64
	Misses      int64
	Entries     int
	CurrentSize int64
	MaxSize     int64
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (s LRUStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}

	return float64(s.Hits) / float64(total)
}

// Clear removes all entries from the cache.
func (c *LRU[K]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*lruEntry[K])
	c.head = nil
	c.tail = nil
	c.currentSize = 0
}

func (c *LRU[K]) moveToFront(entry *lruEntry[K]) {
	if entry == c.head {
		return
	}

	c.removeFromList(entry)
	c.addToFront(entry)
}

func (c *LRU[K]) addToFront(entry *lruEntry[K]) {
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

func (c *LRU[K]) removeFromList(entry *lruEntry[K]) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}
}

// evictionSampleSize is the number of tail entries considered per eviction.
const evictionSampleSize = 5

// evictLowestCost removes the cheapest of the least recently used entries.
func (c *LRU[K]) evictLowestCost() {
	var candidates [evictionSampleSize]*lruEntry[K]

	count := 0

	for entry := c.tail; entry != nil && count < evictionSampleSize; entry = entry.prev {
		candidates[count] = entry
		count++
	}

	if count == 0 {
		return
	}

	victim := candidates[0]
	lowestCost := victim.evictionCost()

	for _, candidate := range candidates[1:count] {
		cost := candidate.evictionCost()
		if cost < lowestCost {
			lowestCost = cost
			victim = candidate
		}
	}

	c.removeFromList(victim)
	delete(c.entries, victim.key)
	c.currentSize -= victim.size()
}

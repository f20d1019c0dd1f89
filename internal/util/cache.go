package util

import (
	"container/list"
	"sync"
)

type (
	// LRUCache is a size-bounded, least-recently-used cache whose values
	// are produced on demand by a Constructor
	LRUCache[K comparable, V any] struct {
		cache   map[K]*list.Element
		lru     *list.List
		maxSize int
		mu      sync.Mutex
	}

	// Constructor produces the value for a key missing from an LRUCache
	Constructor[V any] func() (V, error)

	cacheEntry[K comparable, V any] struct {
		value V
		key   K
	}
)

// NewLRUCache creates an LRUCache holding at most maxSize entries
func NewLRUCache[K comparable, V any](maxSize int) *LRUCache[K, V] {
	return &LRUCache[K, V]{
		cache:   map[K]*list.Element{},
		lru:     list.New(),
		maxSize: maxSize,
	}
}

// Get returns the cached value for key, calling create on a miss. Errors
// from create are returned and nothing is cached
func (c *LRUCache[K, V]) Get(key K, create Constructor[V]) (V, error) {
	c.mu.Lock()
	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		c.mu.Unlock()
		return elem.Value.(*cacheEntry[K, V]).value, nil
	}
	c.mu.Unlock()

	value, err := create()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry[K, V]).value, nil
	}

	entry := &cacheEntry[K, V]{key: key, value: value}
	c.cache[key] = c.lru.PushFront(entry)

	for c.lru.Len() > c.maxSize {
		c.evictLast()
	}

	return value, nil
}

// Len returns the number of cached entries
func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge drops every cached entry
func (c *LRUCache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = map[K]*list.Element{}
	c.lru.Init()
}

func (c *LRUCache[K, V]) evictLast() {
	back := c.lru.Back()
	if back != nil {
		c.lru.Remove(back)
		backEntry := back.Value.(*cacheEntry[K, V])
		delete(c.cache, backEntry.key)
	}
}

// Package cache holds fetched image payloads for the lifetime of the process.
package cache

import "sync"

// ImageCache maps an image locator to its inline payload. Entries are never
// evicted or invalidated; the working set is bounded by the product catalog.
// Safe for concurrent use.
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// New creates an empty ImageCache.
func New() *ImageCache {
	return &ImageCache{
		entries: make(map[string]string),
	}
}

// Get returns the payload cached for the locator, if any.
func (c *ImageCache) Get(locator string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	payload, ok := c.entries[locator]
	return payload, ok
}

// Put stores the payload for the locator. The first successful fetch wins;
// a later Put for the same locator overwrites with an identical value.
func (c *ImageCache) Put(locator, payload string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[locator] = payload
}

// Len reports the number of cached locators.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

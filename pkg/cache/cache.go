package cache

import "time"

// Cache is the interface for caching instrument metadata such as fee rates.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns (value, true) if found, (nil, false) if not found.
	Get(key string) (interface{}, bool)

	// Set stores a value in the cache with a TTL. A zero TTL stores the
	// value without expiry.
	Set(key string, value interface{}, ttl time.Duration) bool

	// Delete removes a value from the cache.
	Delete(key string)

	// Clear removes all values from the cache.
	Clear()

	// Close closes the cache and releases resources.
	Close()
}

// NopCache stores nothing. It stands in when a real cache cannot be
// constructed so callers degrade to fetching instead of failing.
type NopCache struct{}

// NewNopCache creates a cache that never hits.
func NewNopCache() Cache {
	return &NopCache{}
}

func (n *NopCache) Get(string) (interface{}, bool)              { return nil, false }
func (n *NopCache) Set(string, interface{}, time.Duration) bool { return false }
func (n *NopCache) Delete(string)                               {}
func (n *NopCache) Clear()                                      {}
func (n *NopCache) Close()                                      {}

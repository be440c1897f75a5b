package resolver

import (
	"context"
	"sync"
)

// ObjectStore is a content-addressed blob store (e.g. an IPFS pinning
// service). Content under a CID is immutable, so downloads may be cached;
// contrast with Resolver, whose name records must not be.
type ObjectStore interface {
	// Upload stores data and returns its content identifier. The optional
	// name is advisory metadata for the store.
	Upload(ctx context.Context, data []byte, name string) (cid string, err error)

	// Download fetches the content for a CID.
	Download(ctx context.Context, cid string) ([]byte, error)
}

// CachingStore decorates an ObjectStore with a CID-keyed download cache.
// Uploads pass through and prime the cache.
type CachingStore struct {
	inner ObjectStore

	mu    sync.RWMutex
	cache map[string][]byte
}

// NewCachingStore wraps a store with an unbounded in-memory cache.
func NewCachingStore(inner ObjectStore) *CachingStore {
	return &CachingStore{inner: inner, cache: make(map[string][]byte)}
}

// Upload implements ObjectStore.
func (c *CachingStore) Upload(ctx context.Context, data []byte, name string) (string, error) {
	cid, err := c.inner.Upload(ctx, data, name)
	if err != nil {
		return "", err
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	c.mu.Lock()
	c.cache[cid] = cp
	c.mu.Unlock()
	return cid, nil
}

// Download implements ObjectStore, serving from cache when possible.
func (c *CachingStore) Download(ctx context.Context, cid string) ([]byte, error) {
	c.mu.RLock()
	cached, ok := c.cache[cid]
	c.mu.RUnlock()
	if ok {
		out := make([]byte, len(cached))
		copy(out, cached)
		return out, nil
	}

	data, err := c.inner.Download(ctx, cid)
	if err != nil {
		return nil, err
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	c.mu.Lock()
	c.cache[cid] = cp
	c.mu.Unlock()
	return data, nil
}

// CacheLen returns the number of cached entries.
func (c *CachingStore) CacheLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

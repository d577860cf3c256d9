package scanner

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// digestCache remembers digests by file identity for the lifetime of one
// scan, so hard links and repeated paths are read once. Concurrent requests
// for the same identity share a single read. A nil cache computes every time.
type digestCache struct {
	mu      sync.Mutex
	entries map[identity]string
	limit   int
	flight  singleflight.Group
}

// newDigestCache returns a cache holding at most limit entries, or nil when limit <= 0
func newDigestCache(limit int) *digestCache {
	if limit <= 0 {
		return nil
	}
	return &digestCache{
		entries: make(map[identity]string),
		limit:   limit,
	}
}

func (id identity) key() string {
	b := make([]byte, 0, 64)
	b = strconv.AppendUint(b, id.dev, 10)
	b = append(b, ':')
	b = strconv.AppendUint(b, id.ino, 10)
	b = append(b, ':')
	b = strconv.AppendInt(b, id.size, 10)
	b = append(b, ':')
	b = strconv.AppendInt(b, id.mtime, 10)
	return string(b)
}

func (c *digestCache) get(id identity) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.entries[id]
	return d, ok
}

// put stores a digest; once the cache is full new identities are not stored
func (c *digestCache) put(id identity, digest string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[id]; !ok && len(c.entries) >= c.limit {
		return
	}
	c.entries[id] = digest
}

// do returns the cached digest for id or runs compute, collapsing concurrent
// calls for the same identity. Failures are not cached.
func (c *digestCache) do(id identity, compute func() (string, error)) (string, error) {
	if c == nil {
		return compute()
	}
	if d, ok := c.get(id); ok {
		return d, nil
	}

	v, err, _ := c.flight.Do(id.key(), func() (interface{}, error) {
		if d, ok := c.get(id); ok {
			return d, nil
		}
		d, err := compute()
		if err != nil {
			return "", err
		}
		c.put(id, d)
		return d, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *digestCache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

package cache

import (
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader wraps a Cache with singleflight so that concurrent misses for the
// same key result in a single fetch instead of a stampede.
//
// Keys are canonical string serializations of all query parameters. A Loader
// backed by NoopCache still deduplicates concurrent fetches but caches nothing,
// which keeps the cache a staleness control rather than a correctness
// dependency.
type Loader[V any] struct {
	cache Cache[string, V]
	ttl   time.Duration
	sf    singleflight.Group
}

// NewLoader creates a Loader over the given cache with a fixed TTL.
func NewLoader[V any](c Cache[string, V], ttl time.Duration) *Loader[V] {
	return &Loader[V]{cache: c, ttl: ttl}
}

// Get returns the cached value for key, or runs fetch once and caches its
// result. Errors are never cached.
func (l *Loader[V]) Get(key string, fetch func() (V, error)) (V, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	res, err, _ := l.sf.Do(key, func() (any, error) {
		// Double-check after winning the singleflight slot.
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		l.cache.Set(key, v, l.ttl)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultFreshnessWindow is how long a cached value is considered fresh.
const DefaultFreshnessWindow = 60 * time.Second

// Store is a key/value cache with a fixed freshness window. A read is a hit
// only while the entry is younger than the window; expired entries are
// reaped by the underlying janitor. There is no eviction beyond expiry and
// no per-key locking: two concurrent misses may both fetch and both write,
// last write wins.
type Store struct {
	inner *gocache.Cache
}

// New creates a Store with the given freshness window. A window <= 0 falls
// back to DefaultFreshnessWindow.
func New(freshnessWindow time.Duration) *Store {
	if freshnessWindow <= 0 {
		freshnessWindow = DefaultFreshnessWindow
	}
	return &Store{
		inner: gocache.New(freshnessWindow, 2*freshnessWindow),
	}
}

// Get returns the stored value if it is still fresh.
func (s *Store) Get(key string) (any, bool) {
	return s.inner.Get(key)
}

// Set stores value under key with the current timestamp, replacing any prior
// entry.
func (s *Store) Set(key string, value any) {
	s.inner.Set(key, value, gocache.DefaultExpiration)
}

// Invalidate removes the entry unconditionally.
func (s *Store) Invalidate(key string) {
	s.inner.Delete(key)
}

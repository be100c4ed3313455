package repository

import "time"

// Option applies a configuration option to the CachedStore.
type Option func(*CachedStore)

// WithTTL sets how long a sheet read is served from memory. Zero disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(c *CachedStore) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *CachedStore) {
		if now != nil {
			c.now = now
		}
	}
}

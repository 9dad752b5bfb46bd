package filecache

import "log/slog"

// Option configures a Cache.
type Option func(*Cache)

// WithMinFileSize sets the smallest item size, in bytes, the cache will
// admit. Smaller items are always served from the backing store. The
// default is 0.
func WithMinFileSize(size int64) Option {
	return func(c *Cache) {
		c.minFileSize = size
	}
}

// WithMaxFileSize sets the largest item size, in bytes, the cache will
// admit. Larger items are always served from the backing store. The
// default is unbounded.
func WithMaxFileSize(size int64) Option {
	return func(c *Cache) {
		c.maxFileSize = size
	}
}

// WithPriorityFunction replaces [DefaultPriority] as the scoring
// function for admission and eviction decisions.
func WithPriorityFunction(fn PriorityFunc) Option {
	return func(c *Cache) {
		c.priority = fn
	}
}

// WithLogger sets the logger for cache activity. Events are emitted at
// debug level. By default logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

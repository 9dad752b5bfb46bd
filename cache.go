package filecache

import (
	"errors"
	"io/fs"
	"log/slog"
	"math"
)

// Cache is a bounded in-memory content cache over an fs.FS backing
// store. Content is admitted, kept, and evicted according to a priority
// score derived from each item's size and lifetime access count.
//
// A Cache performs no locking: every method requires exclusive access
// to the whole value for the duration of the call, including the
// read-only ones. Wrap a Cache in [FS] to share it between goroutines.
type Cache struct {
	fsys        fs.FS
	sizeLimit   int64
	minFileSize int64
	maxFileSize int64
	priority    PriorityFunc
	logger      *slog.Logger

	// entries and statsTable hold the same keys at rest; accessCounts
	// keeps counting for keys long after their entries are gone.
	entries      map[string][]byte
	statsTable   map[string]fileStats
	accessCounts map[string]int64
	counters     Stats
}

// New creates a Cache that reads from fsys and holds at most sizeLimit
// bytes of content.
func New(fsys fs.FS, sizeLimit int64, opts ...Option) (*Cache, error) {
	c := &Cache{
		fsys:         fsys,
		sizeLimit:    sizeLimit,
		maxFileSize:  math.MaxInt64,
		priority:     DefaultPriority,
		logger:       slog.New(slog.DiscardHandler),
		entries:      make(map[string][]byte),
		statsTable:   make(map[string]fileStats),
		accessCounts: make(map[string]int64),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.fsys == nil {
		return nil, errors.New("filecache: backing store required")
	}
	if c.sizeLimit < 0 {
		return nil, errors.New("filecache: size limit must not be negative")
	}
	if c.minFileSize < 0 {
		return nil, errors.New("filecache: minimum file size must not be negative")
	}
	if c.maxFileSize < c.minFileSize {
		return nil, errors.New("filecache: maximum file size below minimum")
	}
	if c.priority == nil {
		return nil, errors.New("filecache: priority function required")
	}
	if c.logger == nil {
		return nil, errors.New("filecache: logger required")
	}
	return c, nil
}

// Contains reports whether name currently has a cached entry.
func (c *Cache) Contains(name string) bool {
	_, ok := c.entries[name]
	return ok
}

// UsedBytes returns the total size of all cached content.
func (c *Cache) UsedBytes() int64 {
	var n int64
	for _, content := range c.entries {
		n += int64(len(content))
	}
	return n
}

// Remove drops name's entry and derived stats, if present, and resets
// its access history to zero. It is the only operation that resets the
// access count; eviction and [Cache.Refresh] never touch it.
func (c *Cache) Remove(name string) {
	delete(c.statsTable, name)
	delete(c.entries, name)
	delete(c.accessCounts, name)
	c.logger.Debug("cache remove", slog.String("path", name))
}

// setStats derives name's stats record from the current access count
// and the given size.
func (c *Cache) setStats(name string, size int64) {
	count := c.accessCounts[name]
	c.statsTable[name] = fileStats{
		size:        size,
		accessCount: count,
		priority:    c.priority(count, size),
	}
}

package filecache

// fileStats holds the derived metrics for one cached entry. A record
// exists exactly as long as the entry does, and is recomputed whenever
// the entry's access count or size changes; the priority is never set
// independently of the other two fields.
type fileStats struct {
	size        int64
	accessCount int64
	priority    int64
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	// Entries is the number of items currently cached.
	Entries int

	// Hits counts lookups served from cached content.
	Hits int64

	// Misses counts lookups that found no cached entry, whatever the
	// admission outcome.
	Misses int64

	// Evictions counts entries removed to make room for new items.
	// Evictions undone by a rollback are not counted.
	Evictions int64

	// Passthroughs counts lookups the cache declined to admit and served
	// straight from the backing store.
	Passthroughs int64

	// UsedBytes is the total size of all cached content.
	UsedBytes int64
}

// Stats reports current cache activity. Like every other method it
// requires exclusive access to the Cache; use [FS.Stats] on a shared
// cache.
func (c *Cache) Stats() Stats {
	s := c.counters
	s.Entries = len(c.entries)
	s.UsedBytes = c.UsedBytes()
	return s
}

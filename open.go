package filecache

import (
	"io/fs"
	"log/slog"
)

// Open returns a handle for name: a *File over cached content when the
// item is, or on this call becomes, cached; otherwise the backing
// store's own file. Errors come from the backing store—the cache
// itself never makes an item unavailable that the backing store can
// serve.
//
// A hit performs no backing-store I/O. A miss stats the item and then
// either admits it (reading its content into the cache, evicting
// lower-priority entries if that is what it takes) or serves it
// straight from the backing store when it is outside the configured
// size bounds or not worth the space.
func (c *Cache) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	if content, ok := c.entries[name]; ok {
		c.accessCounts[name]++
		c.setStats(name, int64(len(content)))
		c.counters.Hits++
		c.logger.Debug("cache hit", slog.String("path", name))
		return newFile(name, content), nil
	}

	c.counters.Misses++
	return c.admit(name)
}

// admit runs the admission protocol for a name that has no entry:
// metadata first, then the size policy, then a direct insert when the
// item fits, and finally eviction when it does not.
func (c *Cache) admit(name string) (fs.File, error) {
	info, err := fs.Stat(c.fsys, name)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		// Directories and other non-regular items are not cacheable;
		// hand the open to the backing store untouched.
		return c.fsys.Open(name)
	}

	size := info.Size()
	c.accessCounts[name]++
	required := c.UsedBytes() + size - c.sizeLimit

	if err := c.checkSize(size); err != nil {
		c.logger.Debug("cache admission rejected",
			slog.String("path", name),
			slog.Int64("size", size),
			slog.String("reason", err.Error()))
		return c.passthrough(name)
	}

	if required < 0 {
		content, err := fs.ReadFile(c.fsys, name)
		if err != nil {
			return nil, err
		}
		return c.commit(name, content, 0), nil
	}

	newPriority := c.priority(c.accessCounts[name], size)
	victims, err := c.makeRoom(required, newPriority)
	if err != nil {
		c.logger.Debug("cache admission rejected",
			slog.String("path", name),
			slog.Int64("priority", newPriority),
			slog.String("reason", err.Error()))
		return c.passthrough(name)
	}

	content, err := fs.ReadFile(c.fsys, name)
	if err != nil {
		c.restore(victims)
		c.logger.Debug("cache admission rolled back",
			slog.String("path", name),
			slog.Int("restored", len(victims)))
		return nil, err
	}
	return c.commit(name, content, len(victims)), nil
}

// checkSize applies the static size policy to an admission candidate.
func (c *Cache) checkSize(size int64) error {
	switch {
	case size > c.maxFileSize:
		return errFileTooLarge
	case size < c.minFileSize:
		return errFileTooSmall
	case size > c.sizeLimit:
		return errFileLargerThanCache
	}
	return nil
}

// commit stores freshly read content and returns the cached handle.
// evicted is the number of entries that were removed to make room.
func (c *Cache) commit(name string, content []byte, evicted int) *File {
	c.entries[name] = content
	c.setStats(name, int64(len(content)))
	c.counters.Evictions += int64(evicted)
	c.logger.Debug("cache insert",
		slog.String("path", name),
		slog.Int64("size", int64(len(content))),
		slog.Int("evicted", evicted))
	return newFile(name, content)
}

// passthrough serves name straight from the backing store.
func (c *Cache) passthrough(name string) (fs.File, error) {
	f, err := c.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	c.counters.Passthroughs++
	return f, nil
}

package filecache

import (
	"io/fs"
	"log/slog"
)

// Refresh re-reads name's content from the backing store, replacing the
// cached bytes and rederiving its stats from the new size and the
// existing access count. Handles issued before the refresh keep reading
// the old content.
//
// Refresh reports whether a refresh was performed: it returns false,
// changing nothing, when name has no cached entry, no longer exists in
// the backing store, is not a regular file, or cannot be read.
//
// The new content is stored even when it grows usage past the size
// limit; the eviction pass of the next admission rebalances.
func (c *Cache) Refresh(name string) bool {
	if _, ok := c.entries[name]; !ok {
		return false
	}

	info, err := fs.Stat(c.fsys, name)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	content, err := fs.ReadFile(c.fsys, name)
	if err != nil {
		return false
	}

	c.entries[name] = content
	c.setStats(name, int64(len(content)))
	c.logger.Debug("cache refresh",
		slog.String("path", name),
		slog.Int64("size", int64(len(content))))
	return true
}

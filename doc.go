// Package filecache provides a bounded, in-memory content cache in front
// of a slower fs.FS backing store.
//
// Every lookup returns an fs.File: either a handle over cached bytes or
// the backing store's own file when the cache declines to admit the item.
// Admission is decided by a priority score derived from an item's size
// and lifetime access count; making room for a new item evicts the
// lowest-priority entries first and aborts when the entries it would
// have to evict are collectively more valuable than the newcomer.
//
// # Quick Start
//
// Create a cache over a directory and read through it:
//
//	c, err := filecache.New(os.DirFS("/var/www"), 64<<20)
//	if err != nil {
//	    return err
//	}
//	f, err := c.Open("assets/logo.png")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
// A [Cache] performs no locking of its own; wrap it in [FS] when it is
// shared between goroutines:
//
//	shared := filecache.NewFS(c)
//	http.Handle("/", http.FileServerFS(shared))
//
// Under contention, [FS.TryOpen] falls back to reading directly from
// the backing store instead of blocking behind another caller's cache
// mutation.
//
// # Admission
//
// An item is cached only when its priority justifies the space. The
// default scoring function is round(sqrt(size) * accessCount), so many
// small, frequently requested items outweigh one large, rarely
// requested item. Items outside the configured size bounds, and items
// whose priority cannot beat the entries they would displace, are
// served straight from the backing store with no caching penalty beyond
// a metadata read.
//
// # Staleness
//
// Cached content is a snapshot. [Cache.Refresh] re-reads a single key,
// [Cache.Remove] drops one, and [Watch] keeps a cache fronting a real
// directory tree in sync automatically.
package filecache

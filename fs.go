package filecache

import (
	"io/fs"
	"sync"
)

// FS wraps a Cache behind a mutex, making it safe to share between
// goroutines, and implements fs.FS and fs.StatFS so it plugs into
// anything that reads from a filesystem (http.FileServerFS, fs.WalkDir,
// and friends).
//
// Every operation holds the one lock for its full duration—the Cache
// has no finer-grained consistency unit. Callers that must not queue
// behind a slow admission use [FS.TryOpen].
type FS struct {
	mu    sync.Mutex
	cache *Cache
}

var (
	_ fs.FS     = (*FS)(nil)
	_ fs.StatFS = (*FS)(nil)
)

// NewFS wraps cache for shared use. The Cache must not be used directly
// while the wrapper is in service.
func NewFS(cache *Cache) *FS {
	return &FS{cache: cache}
}

// Open looks up name with full cache semantics, blocking while another
// operation runs. See [Cache.Open].
func (s *FS) Open(name string) (fs.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Open(name)
}

// TryOpen is Open for callers that must not block: when the cache is
// busy, it reads name straight from the backing store—the same path
// an admission rejection takes—touching no cache state. Hit counting
// and admission happen only on calls that acquire the lock.
func (s *FS) TryOpen(name string) (fs.File, error) {
	if !s.mu.TryLock() {
		return s.cache.fsys.Open(name)
	}
	defer s.mu.Unlock()
	return s.cache.Open(name)
}

// Stat reports metadata for name from the backing store. It touches no
// cache state and never waits on the cache lock.
func (s *FS) Stat(name string) (fs.FileInfo, error) {
	return fs.Stat(s.cache.fsys, name)
}

// Refresh re-reads a cached key. See [Cache.Refresh].
func (s *FS) Refresh(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Refresh(name)
}

// Remove drops a key and resets its access history. See [Cache.Remove].
func (s *FS) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(name)
}

// Contains reports whether name is currently cached.
func (s *FS) Contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Contains(name)
}

// UsedBytes returns the total size of all cached content.
func (s *FS) UsedBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.UsedBytes()
}

// Stats reports current cache activity.
func (s *FS) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Stats()
}

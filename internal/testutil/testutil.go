// Package testutil provides fs.FS wrappers for exercising cache
// behavior in tests.
package testutil

import (
	"io/fs"
	"sync/atomic"
)

// CountingFS wraps an fs.FS and counts Open and Stat calls, so tests
// can assert exactly how much backing-store I/O an operation performed.
// It deliberately implements no read or directory shortcuts: every
// content read must come through Open.
type CountingFS struct {
	base  fs.FS
	opens atomic.Int64
	stats atomic.Int64
}

// NewCountingFS wraps base.
func NewCountingFS(base fs.FS) *CountingFS {
	return &CountingFS{base: base}
}

// Open counts the call and delegates to the wrapped filesystem.
func (c *CountingFS) Open(name string) (fs.File, error) {
	c.opens.Add(1)
	return c.base.Open(name)
}

// Stat counts the call and delegates to the wrapped filesystem.
func (c *CountingFS) Stat(name string) (fs.FileInfo, error) {
	c.stats.Add(1)
	return fs.Stat(c.base, name)
}

// OpenCalls returns how many times Open has been called.
func (c *CountingFS) OpenCalls() int64 {
	return c.opens.Load()
}

// StatCalls returns how many times Stat has been called.
func (c *CountingFS) StatCalls() int64 {
	return c.stats.Load()
}

// FailFS wraps an fs.FS and fails Open for selected names while leaving
// their metadata visible, reproducing a backing store whose items
// disappear between the stat and the read.
type FailFS struct {
	base     fs.FS
	failures map[string]error
}

// NewFailFS wraps base. Open returns failures[name] when present; Stat
// always delegates to base.
func NewFailFS(base fs.FS, failures map[string]error) *FailFS {
	if failures == nil {
		failures = make(map[string]error)
	}
	return &FailFS{base: base, failures: failures}
}

// Fail arms a failure for name on subsequent Open calls.
func (f *FailFS) Fail(name string, err error) {
	f.failures[name] = err
}

// Open fails with the configured error for name, or delegates.
func (f *FailFS) Open(name string) (fs.File, error) {
	if err, ok := f.failures[name]; ok {
		return nil, err
	}
	return f.base.Open(name)
}

// Stat delegates to the wrapped filesystem.
func (f *FailFS) Stat(name string) (fs.FileInfo, error) {
	return fs.Stat(f.base, name)
}

package filecache

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"time"
)

// File is an fs.File served from cached content. A lookup that returns
// a *File performed no backing-store I/O; any other fs.File coming out
// of [Cache.Open] is the backing store's own handle.
//
// Files issued for the same key share one underlying byte slice but
// read at independent offsets, and they remain valid after the key is
// evicted, refreshed, or removed. Close is a no-op.
type File struct {
	*bytes.Reader
	name string
}

var (
	_ fs.File       = (*File)(nil)
	_ io.ReadSeeker = (*File)(nil)
	_ io.ReaderAt   = (*File)(nil)
)

func newFile(name string, content []byte) *File {
	return &File{Reader: bytes.NewReader(content), name: name}
}

// Stat returns a synthesized FileInfo: the key's base name, the content
// size, a read-only mode, and a zero modification time.
func (f *File) Stat() (fs.FileInfo, error) {
	return &fileInfo{name: path.Base(f.name), size: f.Reader.Size()}, nil
}

// Close implements fs.File. Cached content needs no cleanup.
func (f *File) Close() error { return nil }

type fileInfo struct {
	name string
	size int64
}

func (i *fileInfo) Name() string       { return i.name }
func (i *fileInfo) Size() int64        { return i.size }
func (i *fileInfo) Mode() fs.FileMode  { return 0o444 }
func (i *fileInfo) ModTime() time.Time { return time.Time{} }
func (i *fileInfo) IsDir() bool        { return false }
func (i *fileInfo) Sys() any           { return nil }

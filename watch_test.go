package filecache

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWatchedFS(t *testing.T) (string, *FS) {
	t.Helper()

	dir := t.TempDir()
	c, err := New(os.DirFS(dir), 1<<20)
	require.NoError(t, err)
	return dir, NewFS(c)
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

// readThrough reads name via the cache, returning "" on any error so it
// can serve as an Eventually condition.
func readThrough(s *FS, name string) string {
	f, err := s.Open(name)
	if err != nil {
		return ""
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return ""
	}
	return string(content)
}

func TestWatchRefreshesOnWrite(t *testing.T) {
	t.Parallel()

	dir, s := newWatchedFS(t)
	writeFile(t, filepath.Join(dir, "conf.json"), []byte("v1"))
	require.Equal(t, "v1", readThrough(s, "conf.json"))
	require.True(t, s.Contains("conf.json"))

	w, err := Watch(dir, s)
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, filepath.Join(dir, "conf.json"), []byte("v2"))
	require.Eventually(t, func() bool {
		return readThrough(s, "conf.json") == "v2"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatchRemovesDeletedFiles(t *testing.T) {
	t.Parallel()

	dir, s := newWatchedFS(t)
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("alpha"))
	require.Equal(t, "alpha", readThrough(s, "a.txt"))
	require.True(t, s.Contains("a.txt"))

	w, err := Watch(dir, s)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.Remove(filepath.Join(dir, "a.txt")))
	require.Eventually(t, func() bool {
		return !s.Contains("a.txt")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatchRemovesRenamedFiles(t *testing.T) {
	t.Parallel()

	dir, s := newWatchedFS(t)
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("alpha"))
	require.Equal(t, "alpha", readThrough(s, "a.txt"))

	w, err := Watch(dir, s)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.Rename(filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")))
	require.Eventually(t, func() bool {
		return !s.Contains("a.txt")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatchCoversNewSubdirectories(t *testing.T) {
	t.Parallel()

	dir, s := newWatchedFS(t)

	w, err := Watch(dir, s)
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "sub", "data.bin")
	writeFile(t, path, []byte("v1"))
	require.Equal(t, "v1", readThrough(s, "sub/data.bin"))
	require.True(t, s.Contains("sub/data.bin"))

	// The watch on sub is registered asynchronously, so keep rewriting
	// until an event lands.
	require.Eventually(t, func() bool {
		if os.WriteFile(path, []byte("v2"), 0o644) != nil {
			return false
		}
		return readThrough(s, "sub/data.bin") == "v2"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatchMissingDirectory(t *testing.T) {
	t.Parallel()

	_, s := newWatchedFS(t)

	w, err := Watch(filepath.Join(t.TempDir(), "absent"), s)
	require.Error(t, err)
	assert.ErrorContains(t, err, "watch")
	assert.Nil(t, w)
}

package filecache

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/filecache/internal/testutil"
)

// countPriority scores an entry by its access count alone, giving tests
// direct control over engine ordering.
func countPriority(accessCount, _ int64) int64 { return accessCount }

// seedEntry plants a cached entry with a chosen size and access count.
func seedEntry(c *Cache, name string, size, accessCount int64) {
	c.entries[name] = make([]byte, size)
	c.accessCounts[name] = accessCount
	c.setStats(name, size)
}

func TestMakeRoomNoVictimsNeeded(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, nil, 1024, WithPriorityFunction(countPriority))
	seedEntry(c, "a.bin", 100, 10)

	for _, required := range []int64{0, -50} {
		victims, err := c.makeRoom(required, 1)
		require.NoError(t, err)
		assert.Empty(t, victims)
		assert.True(t, c.Contains("a.bin"))
	}
}

func TestMakeRoomEvictsLowestPriorityFirst(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, nil, 1024, WithPriorityFunction(countPriority))
	seedEntry(c, "a.bin", 100, 10)
	seedEntry(c, "b.bin", 100, 20)
	seedEntry(c, "c.bin", 100, 30)

	victims, err := c.makeRoom(150, 100)
	require.NoError(t, err)

	names := make([]string, 0, len(victims))
	for _, v := range victims {
		names = append(names, v.name)
		assert.Len(t, v.content, 100)
	}
	assert.ElementsMatch(t, []string{"a.bin", "b.bin"}, names)

	assert.True(t, c.Contains("c.bin"))
	assert.False(t, c.Contains("a.bin"))
	assert.False(t, c.Contains("b.bin"))
	assert.Len(t, c.statsTable, 1, "stats leave with their entries")
}

func TestMakeRoomExhausted(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, nil, 1024, WithPriorityFunction(countPriority))
	seedEntry(c, "a.bin", 100, 10)
	seedEntry(c, "b.bin", 100, 20)

	victims, err := c.makeRoom(500, 1000)
	assert.ErrorIs(t, err, errNoRoom)
	assert.Nil(t, victims)
	assert.True(t, c.Contains("a.bin"))
	assert.True(t, c.Contains("b.bin"))
	assert.Len(t, c.statsTable, 2)
}

func TestMakeRoomAbortsWhenVictimsOutweighCandidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		required    int64
		newPriority int64
	}{
		// First victim alone already frees enough, but costs too much.
		{name: "first victim too expensive", required: 50, newPriority: 5},
		// Second victim both completes the space and pushes the summed
		// cost past the candidate: the cost check fires before
		// sufficiency is rechecked.
		{name: "cost check precedes sufficiency", required: 150, newPriority: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestCache(t, nil, 1024, WithPriorityFunction(countPriority))
			seedEntry(c, "a.bin", 100, 10)
			seedEntry(c, "b.bin", 100, 20)

			victims, err := c.makeRoom(tt.required, tt.newPriority)
			assert.ErrorIs(t, err, errPriorityTooLow)
			assert.Nil(t, victims)
			assert.True(t, c.Contains("a.bin"))
			assert.True(t, c.Contains("b.bin"))
			assert.Len(t, c.statsTable, 2)
		})
	}
}

func TestMakeRoomBreaksPriorityTiesByKey(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, nil, 1024, WithPriorityFunction(countPriority))
	seedEntry(c, "b.bin", 100, 10)
	seedEntry(c, "a.bin", 100, 10)

	victims, err := c.makeRoom(100, 50)
	require.NoError(t, err)
	require.Len(t, victims, 1)
	assert.Equal(t, "a.bin", victims[0].name, "tied priorities evict in key order")
	assert.True(t, c.Contains("b.bin"))
}

func TestCacheRollbackRestoresEvictedEntries(t *testing.T) {
	t.Parallel()

	base := mapFS(map[string][]byte{
		"victim.bin": make([]byte, 400),
		"new.bin":    make([]byte, 500),
	})
	failing := testutil.NewFailFS(base, map[string]error{
		"new.bin": &fs.PathError{Op: "open", Path: "new.bin", Err: fs.ErrNotExist},
	})
	c, err := New(failing, 600)
	require.NoError(t, err)

	// Warm the entry that will be chosen as the victim.
	f, err := c.Open("victim.bin")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	wantStats := c.statsTable["victim.bin"]
	wantUsed := c.UsedBytes()

	// The candidate outranks the victim, eviction succeeds, and then
	// the content read fails.
	_, err = c.Open("new.bin")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	assert.True(t, c.Contains("victim.bin"), "victim must be reinstated")
	assert.Equal(t, wantStats, c.statsTable["victim.bin"])
	assert.Equal(t, wantUsed, c.UsedBytes())
	assert.False(t, c.Contains("new.bin"))
	assert.Zero(t, c.Stats().Evictions, "rolled-back evictions are not counted")
	assert.Equal(t, int64(1), c.accessCounts["new.bin"], "the failed lookup still counts")

	// The reinstated entry still serves hits.
	content, f := open(t, c, "victim.bin")
	assert.IsType(t, &File{}, f)
	assert.Len(t, content, 400)
}

func TestCacheEvictionKeepsAccessHistory(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, map[string][]byte{
		"old.bin": make([]byte, 100),
		"new.bin": make([]byte, 400),
	}, 450)

	for range 3 {
		f, err := c.Open("old.bin")
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	require.Equal(t, int64(3), c.accessCounts["old.bin"])

	// First lookup scores round(sqrt(400))*1 = 20, short of old.bin's
	// 30: passthrough. The second scores 40 and takes the space.
	f, err := c.Open("new.bin")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.False(t, c.Contains("new.bin"))

	f, err = c.Open("new.bin")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.True(t, c.Contains("new.bin"))
	require.False(t, c.Contains("old.bin"))

	assert.Equal(t, int64(3), c.accessCounts["old.bin"], "eviction must not reset access history")
}

func TestCacheEvictionMonotonicity(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, map[string][]byte{"new.bin": make([]byte, 250)}, 500,
		WithPriorityFunction(countPriority))
	seedEntry(c, "p10.bin", 100, 10)
	seedEntry(c, "p20.bin", 100, 20)
	seedEntry(c, "p30.bin", 100, 30)
	seedEntry(c, "p40.bin", 100, 40)

	// The candidate arrives with enough history to outrank the two
	// cheapest entries combined.
	c.accessCounts["new.bin"] = 34

	_, f := open(t, c, "new.bin")
	require.IsType(t, &File{}, f)

	require.False(t, c.Contains("p10.bin"))
	require.False(t, c.Contains("p20.bin"))
	admitted := c.statsTable["new.bin"].priority
	for name, stats := range c.statsTable {
		assert.Greater(t, stats.priority, int64(20), "survivor %s must outrank every victim", name)
	}
	assert.Equal(t, int64(35), admitted)
	assert.Equal(t, int64(2), c.Stats().Evictions)
}

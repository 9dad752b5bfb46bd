package filecache

import (
	"log/slog"
	"sort"
)

// victim is an entry removed by makeRoom, carrying everything needed to
// reinstate it unchanged if the admission it made room for falls
// through.
type victim struct {
	name    string
	content []byte
	stats   fileStats
}

// rankedEntry pairs a key with its stats for victim selection.
type rankedEntry struct {
	name  string
	stats fileStats
}

// makeRoom frees at least required bytes for a candidate scoring
// newPriority. Victims are taken lowest priority first and are removed
// from the cache only once the whole set is known to be sufficient;
// the returned victims belong to the caller, who reinstates them via
// restore if the admission fails afterwards.
//
// makeRoom fails, leaving the cache untouched, with errNoRoom when
// evicting everything still would not free enough, and with
// errPriorityTooLow as soon as the victims' summed priority exceeds
// newPriority—even when the victim that pushed the sum over would
// also have freed enough space. required ≤ 0 succeeds with no victims.
func (c *Cache) makeRoom(required, newPriority int64) ([]victim, error) {
	ranked := make([]rankedEntry, 0, len(c.statsTable))
	for name, stats := range c.statsTable {
		ranked = append(ranked, rankedEntry{name: name, stats: stats})
	}

	// Highest priority first; ties broken by key so victim order does
	// not depend on map iteration order.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].stats.priority != ranked[j].stats.priority {
			return ranked[i].stats.priority > ranked[j].stats.priority
		}
		return ranked[i].name > ranked[j].name
	})

	var freed, cost int64
	cut := len(ranked)
	for freed < required {
		if cut == 0 {
			return nil, errNoRoom
		}
		cut--
		freed += ranked[cut].stats.size
		cost += ranked[cut].stats.priority
		if cost > newPriority {
			return nil, errPriorityTooLow
		}
	}

	victims := make([]victim, 0, len(ranked)-cut)
	for _, entry := range ranked[cut:] {
		victims = append(victims, victim{
			name:    entry.name,
			content: c.entries[entry.name],
			stats:   entry.stats,
		})
		delete(c.entries, entry.name)
		delete(c.statsTable, entry.name)
		c.logger.Debug("cache evict",
			slog.String("path", entry.name),
			slog.Int64("size", entry.stats.size),
			slog.Int64("priority", entry.stats.priority))
	}
	return victims, nil
}

// restore reinstates victims exactly as they were removed.
func (c *Cache) restore(victims []victim) {
	for _, v := range victims {
		c.entries[v.name] = v.content
		c.statsTable[v.name] = v.stats
	}
}

package filecache

import "errors"

// Admission outcomes. None of these reach callers: every admission
// failure degrades to serving the item straight from the backing store,
// so the sentinels exist for control flow and debug logging only.
var (
	// errFileTooSmall rejects a candidate below the configured minimum size.
	errFileTooSmall = errors.New("filecache: file smaller than minimum cacheable size")

	// errFileTooLarge rejects a candidate above the configured maximum size.
	errFileTooLarge = errors.New("filecache: file larger than maximum cacheable size")

	// errFileLargerThanCache rejects a candidate that could never fit even
	// in an empty cache.
	errFileLargerThanCache = errors.New("filecache: file larger than total cache size")

	// errNoRoom means eviction cannot free enough space even by removing
	// every entry.
	errNoRoom = errors.New("filecache: no more files to remove")

	// errPriorityTooLow means the entries that would have to be evicted are
	// collectively more valuable than the candidate.
	errPriorityTooLow = errors.New("filecache: new file priority is not high enough")
)

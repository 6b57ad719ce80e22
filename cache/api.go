package cache

import (
	"github.com/IvanBrykalov/lrutrack/freelist"
	"github.com/IvanBrykalov/lrutrack/tracker"
)

// Handle is a weak, freely copyable reference to a cached value.
// It carries no ownership: once the entry is popped or removed the handle
// stops resolving, even if its slot is later reused by another entry.
// The zero Handle never resolves and can be passed to ReplaceOrInsert
// to insert a fresh entry.
type Handle[V any] struct {
	ref freelist.Weak[entry[V]]
}

// IsZero reports whether h was never assigned by the cache.
func (h Handle[V]) IsZero() bool { return h.ref.IsZero() }

// entry is what the slot allocator stores for each cached value.
// position always names the node in partitions[partition] that owns the
// entry's strong handle.
type entry[V any] struct {
	partition uint8
	position  tracker.Index
	value     V
}

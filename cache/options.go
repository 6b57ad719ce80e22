package cache

import (
	"errors"
	"fmt"
)

// MaxPartitions is the largest partition count New accepts.
// Partition identifiers are stored in a single byte.
const MaxPartitions = 256

// ErrInvalidPartitions is wrapped by the panic New raises when
// Options.Partitions exceeds MaxPartitions.
var ErrInvalidPartitions = errors.New("cache: invalid partition count")

func partitionsError(n int) error {
	return fmt.Errorf("%w: must be <=%d but %d was requested", ErrInvalidPartitions, MaxPartitions, n)
}

// EvictReason explains why an entry left the cache.
type EvictReason int

const (
	// EvictOldest: popped from the head of its partition.
	EvictOldest EvictReason = iota
	// EvictRemove: removed out of order through its handle.
	EvictRemove
	// EvictClear: dropped by Clear.
	EvictClear
)

// String returns a stable label for the reason.
func (r EvictReason) String() string {
	switch r {
	case EvictOldest:
		return "oldest"
	case EvictRemove:
		return "remove"
	case EvictClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
// Hooks are called synchronously from the mutating call; keep them cheap.
type Metrics interface {
	// Hit is reported by Touch on a live handle and by ReplaceOrInsert
	// when it refreshes an entry in place.
	Hit(partition uint8)
	// Miss is reported by Touch on a dead handle.
	Miss()
	Insert(partition uint8)
	Migrate(from, to uint8)
	Evict(partition uint8, reason EvictReason)
	Size(partition uint8, entries int)
}

// Options configures the cache. Zero values are safe;
// defaults are applied in New():
//   - Partitions <= 0 => 1
//   - nil Metrics     => NoopMetrics
type Options struct {
	// Partitions is the number of independent recency lists.
	// Values above MaxPartitions make New panic.
	Partitions int

	// Capacity pre-sizes the entry storage (a hint, not a limit).
	Capacity int

	// Metrics receives insert/touch/evict signals.
	Metrics Metrics
}

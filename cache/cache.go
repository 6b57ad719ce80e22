package cache

import (
	"fmt"
	"iter"

	"github.com/IvanBrykalov/lrutrack/freelist"
	"github.com/IvanBrykalov/lrutrack/tracker"
)

// Cache keeps cached values and their per-partition recency lists in step.
// Each value lives in a slot allocator; the only owning reference to it is
// held by one node of one partition's tracker. Callers get weak Handles.
//
// A Cache is not safe for concurrent use; see Locked.
type Cache[V any] struct {
	entries    freelist.List[entry[V]]
	partitions []tracker.Tracker[freelist.Strong[entry[V]]]
	metrics    Metrics
}

// New constructs a cache with the provided Options.
// It panics with an error wrapping ErrInvalidPartitions if
// opt.Partitions exceeds MaxPartitions.
func New[V any](opt Options) *Cache[V] {
	if opt.Partitions > MaxPartitions {
		panic(partitionsError(opt.Partitions))
	}
	if opt.Partitions <= 0 {
		opt.Partitions = 1
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	c := &Cache[V]{
		partitions: make([]tracker.Tracker[freelist.Strong[entry[V]]], opt.Partitions),
		metrics:    opt.Metrics,
	}
	if opt.Capacity > 0 {
		c.entries = *freelist.New[entry[V]](opt.Capacity)
	}
	return c
}

// PushNew inserts v as the newest entry of partition and returns a handle to it.
func (c *Cache[V]) PushNew(partition uint8, v V) Handle[V] {
	t := c.tracker(partition)
	strong := c.entries.Insert(entry[V]{partition: partition, value: v})
	h := Handle[V]{ref: strong.Weak()}
	pos := t.PushNew(strong)
	c.entries.Get(strong).position = pos

	c.metrics.Insert(partition)
	c.metrics.Size(partition, t.Len())
	return h
}

// Get returns the value behind h, or false if it was evicted.
// It has no effect on recency. The pointer is valid until the next
// insertion into the cache.
func (c *Cache[V]) Get(h Handle[V]) (*V, bool) {
	e, ok := c.entries.GetOpt(h.ref)
	if !ok {
		return nil, false
	}
	return &e.value, true
}

// Contains reports whether h still resolves.
func (c *Cache[V]) Contains(h Handle[V]) bool {
	_, ok := c.entries.GetOpt(h.ref)
	return ok
}

// PartitionOf returns the partition currently holding h.
func (c *Cache[V]) PartitionOf(h Handle[V]) (uint8, bool) {
	e, ok := c.entries.GetOpt(h.ref)
	if !ok {
		return 0, false
	}
	return e.partition, true
}

// PeekOldest returns the least recently used value of partition
// without changing order or membership.
func (c *Cache[V]) PeekOldest(partition uint8) (*V, bool) {
	strong, ok := c.tracker(partition).PeekFront()
	if !ok {
		return nil, false
	}
	return &c.entries.Get(strong).value, true
}

// PopOldest evicts the least recently used value of partition and returns it.
// It reports false when the partition is empty.
func (c *Cache[V]) PopOldest(partition uint8) (V, bool) {
	t := c.tracker(partition)
	strong, ok := t.PopFront()
	if !ok {
		var zero V
		return zero, false
	}
	e := c.entries.Free(strong)

	c.metrics.Evict(partition, EvictOldest)
	c.metrics.Size(partition, t.Len())
	return e.value, true
}

// ReplaceOrInsert stores v behind *h in partition.
//
// If *h resolves, the entry is moved to partition when it lives elsewhere,
// becomes the newest entry there, and its previous value is returned.
// Otherwise v is pushed as a new entry, *h is overwritten with its handle,
// and false is returned.
func (c *Cache[V]) ReplaceOrInsert(h *Handle[V], partition uint8, v V) (V, bool) {
	dst := c.tracker(partition)
	e, ok := c.entries.GetOpt(h.ref)
	if !ok {
		*h = c.PushNew(partition, v)
		var zero V
		return zero, false
	}

	if from := e.partition; from != partition {
		src := &c.partitions[from]
		strong := src.Remove(e.position)
		e.position = dst.PushNew(strong)
		e.partition = partition

		c.metrics.Migrate(from, partition)
		c.metrics.Size(from, src.Len())
		c.metrics.Size(partition, dst.Len())
	} else {
		dst.MarkUsed(e.position)
		c.metrics.Hit(partition)
	}

	old := e.value
	e.value = v
	return old, true
}

// Remove evicts the entry behind h out of order and returns its value.
// It reports false if h no longer resolves.
func (c *Cache[V]) Remove(h Handle[V]) (V, bool) {
	e, ok := c.entries.GetOpt(h.ref)
	if !ok {
		var zero V
		return zero, false
	}
	partition := e.partition
	t := &c.partitions[partition]
	strong := t.Remove(e.position)
	v := c.entries.Free(strong).value

	c.metrics.Evict(partition, EvictRemove)
	c.metrics.Size(partition, t.Len())
	return v, true
}

// Touch marks the entry behind h as the newest of its partition and
// returns mutable access to its value. The pointer is valid until the
// next insertion into the cache.
func (c *Cache[V]) Touch(h Handle[V]) (*V, bool) {
	e, ok := c.entries.GetOpt(h.ref)
	if !ok {
		c.metrics.Miss()
		return nil, false
	}
	c.partitions[e.partition].MarkUsed(e.position)
	c.metrics.Hit(e.partition)
	return &e.value, true
}

// Oldest iterates partition from least to most recently used
// without affecting recency. The cache must not be mutated during iteration.
func (c *Cache[V]) Oldest(partition uint8) iter.Seq2[Handle[V], *V] {
	t := c.tracker(partition)
	return func(yield func(Handle[V], *V) bool) {
		for _, strong := range t.All() {
			if !yield(Handle[V]{ref: strong.Weak()}, &c.entries.Get(strong).value) {
				return
			}
		}
	}
}

// Len returns the number of entries across all partitions.
func (c *Cache[V]) Len() int { return c.entries.Len() }

// PartitionLen returns the number of entries in partition.
func (c *Cache[V]) PartitionLen(partition uint8) int { return c.tracker(partition).Len() }

// Partitions returns the configured partition count.
func (c *Cache[V]) Partitions() int { return len(c.partitions) }

// Clear drops every entry. All outstanding handles stop resolving.
func (c *Cache[V]) Clear() {
	for i := range c.partitions {
		p := uint8(i)
		for range c.partitions[i].Len() {
			c.metrics.Evict(p, EvictClear)
		}
		c.partitions[i].Reset()
		c.metrics.Size(p, 0)
	}
	c.entries.Reset()
}

// Validate checks every tracker's structure and that each entry's
// (partition, position) points back at the node that owns it.
// It runs in O(n) and is meant for tests and debugging.
func (c *Cache[V]) Validate() error {
	total := 0
	for i := range c.partitions {
		t := &c.partitions[i]
		if err := t.Validate(); err != nil {
			return fmt.Errorf("partition %d: %w", i, err)
		}
		for pos, strong := range t.All() {
			e, ok := c.entries.GetOpt(strong.Weak())
			if !ok {
				return fmt.Errorf("partition %d: node %d owns a freed entry", i, pos)
			}
			if int(e.partition) != i || e.position != pos {
				return fmt.Errorf("partition %d: node %d back-reference is (%d, %d)",
					i, pos, e.partition, e.position)
			}
		}
		total += t.Len()
	}
	if total != c.entries.Len() {
		return fmt.Errorf("%d entries stored but %d tracked", c.entries.Len(), total)
	}
	return nil
}

// tracker returns the tracker for partition, panicking on an id
// outside the configured range.
func (c *Cache[V]) tracker(partition uint8) *tracker.Tracker[freelist.Strong[entry[V]]] {
	if int(partition) >= len(c.partitions) {
		panic(fmt.Sprintf("cache: partition %d out of range [0,%d)", partition, len(c.partitions)))
	}
	return &c.partitions[partition]
}

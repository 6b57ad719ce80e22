// Package cache implements a partitioned LRU tracking engine: the eviction
// brain behind a content-addressable cache such as a GPU texture atlas.
//
// Design
//
//   - Storage: values live in a generational slot allocator (package
//     freelist). The cache hands out weak Handles; the single strong handle
//     for each entry is owned by a node of one partition's tracker.
//
//   - Ordering: each partition is an independent tracker.Tracker, a doubly
//     linked list laid over a flat node array (head = oldest, tail = newest).
//     Entries store their (partition, position) so every operation is O(1).
//
//   - Eviction: the cache never decides what or when to evict. A policy
//     (for example policy/budget) calls PopOldest until it is satisfied, or
//     Remove for out-of-order eviction.
//
//   - Dangling handles: once an entry is popped or removed its handles report
//     false, even after the slot is reused (generation check).
//
//   - Metrics: Options.Metrics receives Insert/Hit/Miss/Migrate/Evict/Size
//     signals. NoopMetrics is the default; metrics/prom exports them.
//
// Basic usage
//
//	c := cache.New[Texture](cache.Options{Partitions: 2})
//	h := c.PushNew(0, tex)
//	if t, ok := c.Touch(h); ok { // refresh recency while using it
//	    draw(t)
//	}
//	for c.Len() > limit {
//	    if _, ok := c.PopOldest(0); !ok {
//	        break
//	    }
//	}
//
// Moving an entry between partitions
//
//	old, ok := c.ReplaceOrInsert(&h, 1, newTex) // h now lives in partition 1
//
// Thread-safety & complexity
//
// Cache is not safe for concurrent use and is not reentrant. Guard it with a
// mutex or use Locked. Every operation is O(1) amortized; Validate and Clear
// are O(n).
package cache

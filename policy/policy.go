// Package policy defines the contract between the cache engine and the code
// that decides how much to evict.
//
// The engine (package cache) only exposes eviction primitives: PopOldest for
// the head of a partition and Remove for a specific entry. A Reclaimer sits
// on top and keeps calling them until its own goal (a memory budget, a frame
// deadline, an entry count) is met.
package policy

import "github.com/IvanBrykalov/lrutrack/cache"

// Reclaimer frees at least need units of cost from c, if that much is
// evictable, and reports how much was freed and how many entries left.
// Implementations run under the caller's serialization; they must not
// retain c.
type Reclaimer[V any] interface {
	Reclaim(c *cache.Cache[V], need int64) (freed int64, evicted int)
}

// Func adapts a plain function to Reclaimer.
type Func[V any] func(c *cache.Cache[V], need int64) (int64, int)

// Reclaim calls f.
func (f Func[V]) Reclaim(c *cache.Cache[V], need int64) (int64, int) { return f(c, need) }

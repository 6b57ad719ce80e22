package cache

import "sync"

// Locked serializes access to a Cache with a mutex.
// Value pointers handed out by the cache are only safe inside Do,
// so the convenience methods below return copies.
type Locked[V any] struct {
	mu sync.Mutex
	c  *Cache[V]
}

// NewLocked constructs a mutex-guarded cache; see New for opt.
func NewLocked[V any](opt Options) *Locked[V] {
	return &Locked[V]{c: New[V](opt)}
}

// Do runs fn with exclusive access to the cache.
// fn must not retain the cache or any value pointer after returning.
func (l *Locked[V]) Do(fn func(c *Cache[V])) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.c)
}

// PushNew inserts v as the newest entry of partition.
func (l *Locked[V]) PushNew(partition uint8, v V) Handle[V] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.PushNew(partition, v)
}

// Touch marks h as used and returns a copy of its value.
func (l *Locked[V]) Touch(h Handle[V]) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.c.Touch(h); ok {
		return *p, true
	}
	var zero V
	return zero, false
}

// PopOldest evicts the least recently used value of partition.
func (l *Locked[V]) PopOldest(partition uint8) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.PopOldest(partition)
}

// Remove evicts h out of order.
func (l *Locked[V]) Remove(h Handle[V]) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Remove(h)
}

// Len returns the number of entries across all partitions.
func (l *Locked[V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Len()
}

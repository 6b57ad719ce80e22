// Package freelist is an array-backed slot allocator.
//
// Values live in a single growable slice; freed slots are threaded into an
// internal free list and reused by later inserts. Every slot carries a
// generation counter that is bumped on Free, so handles issued for a previous
// occupant stop resolving once the slot is recycled.
//
// Two handle flavours are issued:
//
//   - Strong: the owning handle returned by Insert and consumed by Free.
//     Exactly one holder is expected to keep it; Go cannot enforce this, so
//     callers must not retain copies after handing it off.
//
//   - Weak: a freely copyable, non-owning handle derived from a Strong one.
//     GetOpt validates it and reports false once the entry is gone.
//
// The zero Weak never resolves. A List is not safe for concurrent use.
package freelist

import "math"

// Strong is the owning handle to a slot.
type Strong[T any] struct {
	idx uint32
	gen uint32
}

// Weak is a non-owning handle to a slot.
type Weak[T any] struct {
	idx uint32
	gen uint32
}

// Weak derives a non-owning handle for the same slot.
func (s Strong[T]) Weak() Weak[T] { return Weak[T]{idx: s.idx, gen: s.gen} }

// IsZero reports whether w was never issued by a List.
func (w Weak[T]) IsZero() bool { return w.gen == 0 }

type slot[T any] struct {
	val T
	// gen starts at 1 and is bumped on every Free,
	// skipping 0 on wrap so the zero Weak stays invalid.
	gen uint32
	// nextFree is index+1 of the next free slot; 0 terminates the list.
	nextFree uint32
	occupied bool
}

// List stores values of type T behind Strong/Weak handles.
// The zero value is an empty list ready for use.
type List[T any] struct {
	slots    []slot[T]
	freeHead uint32 // index+1, 0 = empty
	len      int
}

// New returns a List with room for capacity values before growing.
func New[T any](capacity int) *List[T] {
	return &List[T]{slots: make([]slot[T], 0, max(capacity, 0))}
}

// Len returns the number of occupied slots.
func (l *List[T]) Len() int { return l.len }

// Insert stores v and returns its owning handle.
func (l *List[T]) Insert(v T) Strong[T] {
	l.len++
	if l.freeHead != 0 {
		idx := l.freeHead - 1
		s := &l.slots[idx]
		l.freeHead = s.nextFree
		s.nextFree = 0
		s.occupied = true
		s.val = v
		return Strong[T]{idx: idx, gen: s.gen}
	}
	if full(len(l.slots)) {
		panic("freelist: slot index space exhausted")
	}
	l.slots = append(l.slots, slot[T]{val: v, gen: 1, occupied: true})
	return Strong[T]{idx: uint32(len(l.slots) - 1), gen: 1}
}

// full reports whether n slots leave no uint32 index for another one.
// freeHead stores index+1, so the last usable index is MaxUint32-1.
func full(n int) bool { return uint64(n) >= math.MaxUint32 }

// Get returns the value behind a strong handle. The handle must be live;
// a stale strong handle means ownership was violated and Get panics.
// The pointer is valid until the next Insert.
func (l *List[T]) Get(s Strong[T]) *T {
	return &l.mustLive(s.idx, s.gen).val
}

// GetOpt returns the value behind w, or false if w no longer resolves.
// The pointer is valid until the next Insert.
func (l *List[T]) GetOpt(w Weak[T]) (*T, bool) {
	if int(w.idx) >= len(l.slots) {
		return nil, false
	}
	s := &l.slots[w.idx]
	if !s.occupied || s.gen != w.gen {
		return nil, false
	}
	return &s.val, true
}

// Free releases the slot owned by s and returns its value.
// Every handle derived from s stops resolving.
func (l *List[T]) Free(s Strong[T]) T {
	sl := l.mustLive(s.idx, s.gen)
	v := sl.val
	l.release(s.idx)
	return v
}

// Reset frees every occupied slot. Outstanding handles stop resolving;
// the backing storage is kept for reuse.
func (l *List[T]) Reset() {
	for i := range l.slots {
		if l.slots[i].occupied {
			l.release(uint32(i))
		}
	}
}

func (l *List[T]) release(idx uint32) {
	var zero T
	s := &l.slots[idx]
	s.val = zero
	s.occupied = false
	if s.gen++; s.gen == 0 {
		s.gen = 1
	}
	s.nextFree = l.freeHead
	l.freeHead = idx + 1
	l.len--
}

func (l *List[T]) mustLive(idx, gen uint32) *slot[T] {
	if int(idx) >= len(l.slots) {
		panic("freelist: strong handle out of range")
	}
	s := &l.slots[idx]
	if !s.occupied || s.gen != gen {
		panic("freelist: stale strong handle")
	}
	return s
}

// Package tracker implements a recency list over a flat node array.
//
// A Tracker records the usage order of the payloads pushed into it: head is
// the oldest entry, tail the most recently used one. Nodes are addressed by
// small integer indices instead of pointers, and vacated nodes are threaded
// into an internal free list so steady-state churn does not allocate.
//
// Index 0 is a permanent placeholder meaning "no neighbour"; it is never
// handed out. Every operation runs in O(1). A Tracker is not safe for
// concurrent use.
package tracker

import (
	"iter"
	"math"
)

// Index identifies an occupied node inside one Tracker.
// The zero Index never refers to a node.
type Index uint32

// node is one element of the usage list. While occupied it is linked through
// prev/next; once freed, next threads the free list and prev is unused.
type node[T any] struct {
	prev, next Index
	payload    T
	occupied   bool
}

// Tracker is one partition's usage-ordered list.
// The zero value is an empty tracker ready for use.
type Tracker[T any] struct {
	head     Index // oldest
	tail     Index // newest
	freeHead Index
	nodes    []node[T]
	len      int
}

// New returns a Tracker with room for capacity nodes before growing.
func New[T any](capacity int) *Tracker[T] {
	return &Tracker[T]{nodes: make([]node[T], 1, max(capacity, 0)+1)}
}

// Len returns the number of occupied nodes.
func (t *Tracker[T]) Len() int { return t.len }

// Cap returns the number of node slots allocated so far (occupied plus free).
func (t *Tracker[T]) Cap() int { return max(len(t.nodes)-1, 0) }

// PushNew stores h as the newest entry and returns its index.
func (t *Tracker[T]) PushNew(h T) Index {
	i := t.alloc(h)
	t.linkTail(i)
	t.len++
	if debugging {
		t.check()
	}
	return i
}

// PeekFront returns the oldest payload without changing anything.
func (t *Tracker[T]) PeekFront() (T, bool) {
	if t.head == 0 {
		t.mustBeEmpty()
		var zero T
		return zero, false
	}
	return t.nodes[t.head].payload, true
}

// PopFront removes and returns the oldest payload.
func (t *Tracker[T]) PopFront() (T, bool) {
	if t.head == 0 {
		t.mustBeEmpty()
		var zero T
		return zero, false
	}
	return t.Remove(t.head), true
}

// Remove unlinks the node at i and returns its payload.
// i must refer to an occupied node of this tracker.
func (t *Tracker[T]) Remove(i Index) T {
	t.mustOccupy(i)
	t.unlink(i)
	t.len--
	h := t.release(i)
	if debugging {
		t.check()
	}
	return h
}

// MarkUsed moves the node at i to the newest position.
// i must refer to an occupied node of this tracker.
func (t *Tracker[T]) MarkUsed(i Index) {
	t.mustOccupy(i)
	if i == t.tail {
		return
	}
	t.unlink(i)
	t.linkTail(i)
	if debugging {
		t.check()
	}
}

// Reset drops every node. Indices issued before Reset are invalid.
func (t *Tracker[T]) Reset() {
	clear(t.nodes)
	t.nodes = t.nodes[:min(len(t.nodes), 1)]
	t.head, t.tail, t.freeHead, t.len = 0, 0, 0, 0
}

// All iterates from oldest to newest.
// The tracker must not be mutated during iteration.
func (t *Tracker[T]) All() iter.Seq2[Index, T] {
	return func(yield func(Index, T) bool) {
		for i := t.head; i != 0; i = t.nodes[i].next {
			if !yield(i, t.nodes[i].payload) {
				return
			}
		}
	}
}

// Backward iterates from newest to oldest.
// The tracker must not be mutated during iteration.
func (t *Tracker[T]) Backward() iter.Seq2[Index, T] {
	return func(yield func(Index, T) bool) {
		for i := t.tail; i != 0; i = t.nodes[i].prev {
			if !yield(i, t.nodes[i].payload) {
				return
			}
		}
	}
}

// -------------------- internals --------------------

// alloc takes a slot from the free list, or grows the array by one.
func (t *Tracker[T]) alloc(h T) Index {
	if len(t.nodes) == 0 {
		t.nodes = append(t.nodes, node[T]{}) // placeholder for Index 0
	}
	if i := t.freeHead; i != 0 {
		n := &t.nodes[i]
		t.freeHead = n.next
		*n = node[T]{payload: h, occupied: true}
		return i
	}
	if full(len(t.nodes)) {
		panic("tracker: index space exhausted")
	}
	t.nodes = append(t.nodes, node[T]{payload: h, occupied: true})
	return Index(len(t.nodes) - 1)
}

// full reports whether an array of n nodes has no Index left to append.
func full(n int) bool { return uint64(n) > math.MaxUint32 }

// linkTail appends an unlinked node at i as the newest entry.
func (t *Tracker[T]) linkTail(i Index) {
	n := &t.nodes[i]
	switch {
	case t.head == 0 && t.tail == 0:
		n.prev, n.next = 0, 0
		t.head, t.tail = i, i
	case t.head != 0 && t.tail != 0:
		n.prev, n.next = t.tail, 0
		t.nodes[t.tail].next = i
		t.tail = i
	default:
		panic(corrupt("head and tail disagree on emptiness"))
	}
}

// unlink detaches the node at i, patching neighbours or head/tail.
func (t *Tracker[T]) unlink(i Index) {
	n := &t.nodes[i]
	if n.prev != 0 {
		t.nodes[n.prev].next = n.next
	} else {
		t.head = n.next
	}
	if n.next != 0 {
		t.nodes[n.next].prev = n.prev
	} else {
		t.tail = n.prev
	}
	n.prev, n.next = 0, 0
}

// release clears the node at i, pushes it onto the free list
// and returns the payload it held.
func (t *Tracker[T]) release(i Index) T {
	n := &t.nodes[i]
	h := n.payload
	*n = node[T]{next: t.freeHead}
	t.freeHead = i
	return h
}

func (t *Tracker[T]) mustOccupy(i Index) {
	if i == 0 || int(i) >= len(t.nodes) || !t.nodes[i].occupied {
		panic(corrupt("index does not refer to an occupied node"))
	}
}

func (t *Tracker[T]) mustBeEmpty() {
	if t.tail != 0 || t.len != 0 {
		panic(corrupt("head is empty but tail is not"))
	}
}

func (t *Tracker[T]) check() {
	if err := t.Validate(); err != nil {
		panic(err)
	}
}

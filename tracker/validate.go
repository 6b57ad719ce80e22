package tracker

import (
	"errors"
	"fmt"
)

// ErrCorrupt is wrapped by every invariant violation reported by Validate
// and carried by the panics of index-taking operations.
var ErrCorrupt = errors.New("tracker: corrupt")

func corrupt(msg string) error { return fmt.Errorf("%w: %s", ErrCorrupt, msg) }

// Validate walks the whole tracker and checks its structural invariants:
//   - head and tail are both set or both zero;
//   - the forward walk from head and the backward walk from tail agree;
//   - occupied nodes and free nodes are disjoint and cover nodes[1:].
//
// It runs in O(n) and is meant for tests and debug builds.
func (t *Tracker[T]) Validate() error {
	if (t.head == 0) != (t.tail == 0) {
		return corrupt(fmt.Sprintf("head=%d tail=%d", t.head, t.tail))
	}
	if len(t.nodes) == 0 {
		if t.head != 0 || t.freeHead != 0 || t.len != 0 {
			return corrupt("unallocated tracker has links")
		}
		return nil
	}
	if t.nodes[0].occupied || t.nodes[0].prev != 0 || t.nodes[0].next != 0 {
		return corrupt("placeholder node 0 is in use")
	}

	slots := len(t.nodes) - 1
	seen := make([]bool, len(t.nodes))

	// Forward walk.
	forward := make([]Index, 0, t.len)
	var prev Index
	for i := t.head; i != 0; i = t.nodes[i].next {
		if int(i) >= len(t.nodes) {
			return corrupt(fmt.Sprintf("next link %d out of range", i))
		}
		if seen[i] {
			return corrupt(fmt.Sprintf("cycle at node %d", i))
		}
		seen[i] = true
		n := t.nodes[i]
		if !n.occupied {
			return corrupt(fmt.Sprintf("free node %d linked into usage list", i))
		}
		if n.prev != prev {
			return corrupt(fmt.Sprintf("node %d prev=%d, want %d", i, n.prev, prev))
		}
		forward = append(forward, i)
		prev = i
	}
	if prev != t.tail {
		return corrupt(fmt.Sprintf("forward walk ends at %d, tail is %d", prev, t.tail))
	}
	if len(forward) != t.len {
		return corrupt(fmt.Sprintf("len=%d but %d nodes linked", t.len, len(forward)))
	}

	// Backward walk must be the exact reverse.
	k := len(forward)
	for i := t.tail; i != 0; i = t.nodes[i].prev {
		k--
		if k < 0 || forward[k] != i {
			return corrupt("backward walk disagrees with forward walk")
		}
	}
	if k != 0 {
		return corrupt("backward walk is shorter than forward walk")
	}

	// Free list.
	free := 0
	for i := t.freeHead; i != 0; i = t.nodes[i].next {
		if int(i) >= len(t.nodes) {
			return corrupt(fmt.Sprintf("free link %d out of range", i))
		}
		if seen[i] {
			return corrupt(fmt.Sprintf("node %d is both free and occupied, or repeats", i))
		}
		seen[i] = true
		if t.nodes[i].occupied {
			return corrupt(fmt.Sprintf("occupied node %d on free list", i))
		}
		free++
	}
	if free+t.len != slots {
		return corrupt(fmt.Sprintf("%d occupied + %d free != %d slots", t.len, free, slots))
	}
	return nil
}

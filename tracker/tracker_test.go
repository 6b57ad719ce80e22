package tracker

import (
	"errors"
	"math"
	"slices"
	"testing"
)

// collect returns payloads oldest→newest.
func collect[T any](t *Tracker[T]) []T {
	var out []T
	for _, v := range t.All() {
		out = append(out, v)
	}
	return out
}

func mustValid[T any](tb testing.TB, t *Tracker[T]) {
	tb.Helper()
	if err := t.Validate(); err != nil {
		tb.Fatalf("invariants broken: %v", err)
	}
}

func TestTracker_EmptyPeekPop(t *testing.T) {
	t.Parallel()

	var tr Tracker[int]
	if _, ok := tr.PeekFront(); ok {
		t.Fatal("PeekFront on empty tracker must report false")
	}
	if _, ok := tr.PopFront(); ok {
		t.Fatal("PopFront on empty tracker must report false")
	}
	mustValid(t, &tr)
}

// Pushing without touches yields FIFO order on pop.
func TestTracker_FIFO(t *testing.T) {
	t.Parallel()

	tr := New[int](0)
	for i := 0; i < 10; i++ {
		if idx := tr.PushNew(i); idx == 0 {
			t.Fatal("PushNew must never return Index 0")
		}
	}
	mustValid(t, tr)
	for want := 0; want < 10; want++ {
		got, ok := tr.PopFront()
		if !ok || got != want {
			t.Fatalf("PopFront want %d, got %d ok=%v", want, got, ok)
		}
		mustValid(t, tr)
	}
	if tr.Len() != 0 {
		t.Fatalf("Len want 0, got %d", tr.Len())
	}
}

func TestTracker_PeekIsIdempotent(t *testing.T) {
	t.Parallel()

	tr := New[string](2)
	tr.PushNew("a")
	tr.PushNew("b")
	for i := 0; i < 3; i++ {
		if v, ok := tr.PeekFront(); !ok || v != "a" {
			t.Fatalf("PeekFront want a, got %q", v)
		}
	}
	if v, _ := tr.PopFront(); v != "a" {
		t.Fatalf("PopFront after peek want a, got %q", v)
	}
}

// MarkUsed moves a node to the newest position in every list shape.
func TestTracker_MarkUsed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		touch int // position in 0..3
		want  []int
	}{
		{"head", 0, []int{1, 2, 3, 0}},
		{"middle", 2, []int{0, 1, 3, 2}},
		{"tail", 3, []int{0, 1, 2, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tr := New[int](4)
			idx := make([]Index, 4)
			for i := range idx {
				idx[i] = tr.PushNew(i)
			}
			tr.MarkUsed(idx[tc.touch])
			mustValid(t, tr)
			if got := collect(tr); !slices.Equal(got, tc.want) {
				t.Fatalf("order want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestTracker_MarkUsedSingle(t *testing.T) {
	t.Parallel()

	tr := New[int](1)
	i := tr.PushNew(42)
	tr.MarkUsed(i)
	mustValid(t, tr)
	if v, ok := tr.PeekFront(); !ok || v != 42 {
		t.Fatal("single node must survive MarkUsed")
	}
}

func TestTracker_RemoveArbitrary(t *testing.T) {
	t.Parallel()

	tr := New[int](5)
	idx := make([]Index, 5)
	for i := range idx {
		idx[i] = tr.PushNew(i)
	}
	// middle, head, tail
	for _, k := range []int{2, 0, 4} {
		if got := tr.Remove(idx[k]); got != k {
			t.Fatalf("Remove want %d, got %d", k, got)
		}
		mustValid(t, tr)
	}
	if got := collect(tr); !slices.Equal(got, []int{1, 3}) {
		t.Fatalf("remaining want [1 3], got %v", got)
	}

	var back []int
	for _, v := range tr.Backward() {
		back = append(back, v)
	}
	if !slices.Equal(back, []int{3, 1}) {
		t.Fatalf("Backward want [3 1], got %v", back)
	}
}

// Vacated slots are recycled before the array grows.
func TestTracker_ReusesFreeSlots(t *testing.T) {
	t.Parallel()

	tr := New[int](0)
	a := tr.PushNew(1)
	tr.PushNew(2)
	tr.Remove(a)
	if got := tr.PushNew(3); got != a {
		t.Fatalf("expected slot %d to be reused, got %d", a, got)
	}
	if tr.Cap() != 2 {
		t.Fatalf("Cap want 2, got %d", tr.Cap())
	}
	mustValid(t, tr)
}

func TestTracker_Reset(t *testing.T) {
	t.Parallel()

	tr := New[int](0)
	for i := 0; i < 4; i++ {
		tr.PushNew(i)
	}
	tr.Reset()
	mustValid(t, tr)
	if tr.Len() != 0 || tr.Cap() != 0 {
		t.Fatalf("Reset must empty the tracker, len=%d cap=%d", tr.Len(), tr.Cap())
	}
	tr.PushNew(9)
	if v, _ := tr.PeekFront(); v != 9 {
		t.Fatal("tracker unusable after Reset")
	}
}

func TestTracker_RemoveFreeIndexPanics(t *testing.T) {
	t.Parallel()

	tr := New[int](0)
	i := tr.PushNew(1)
	tr.Remove(i)

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrCorrupt) {
			t.Fatalf("want ErrCorrupt panic, got %v", r)
		}
	}()
	tr.Remove(i)
}

func TestTracker_InconsistentHeadTailPanics(t *testing.T) {
	t.Parallel()

	tr := New[int](0)
	tr.PushNew(1)
	tr.head = 0 // simulate corruption

	defer func() {
		if recover() == nil {
			t.Fatal("push onto a corrupt tracker must panic")
		}
	}()
	tr.PushNew(2)
}

func TestTracker_ValidateDetectsCorruption(t *testing.T) {
	t.Parallel()

	tr := New[int](0)
	a := tr.PushNew(1)
	tr.PushNew(2)
	tr.PushNew(3)
	tr.nodes[a].next = 3 // skip the middle node
	if err := tr.Validate(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Validate want ErrCorrupt, got %v", err)
	}
}

// The growth guard compares in uint64 so it builds where int is 32 bits.
// Index MaxUint32 is still issuable, so an array of MaxUint32 nodes can grow.
func TestFull(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 1 << 20} {
		if full(n) {
			t.Fatalf("full(%d) = true", n)
		}
	}

	limit := uint64(math.MaxUint32)
	if limit >= uint64(math.MaxInt) {
		t.Skip("int cannot hold MaxUint32+1 on this platform")
	}
	if full(int(limit)) {
		t.Fatalf("full(MaxUint32) = true")
	}
	if !full(int(limit) + 1) {
		t.Fatalf("full(MaxUint32+1) = false")
	}
}

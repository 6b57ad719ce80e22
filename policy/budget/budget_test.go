package budget_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/lrutrack/cache"
	"github.com/IvanBrykalov/lrutrack/policy"
	"github.com/IvanBrykalov/lrutrack/policy/budget"
)

type tile struct {
	id    int
	bytes int64
}

func newAtlas(t *testing.T) *cache.Cache[tile] {
	t.Helper()
	c := cache.New[tile](cache.Options{Partitions: 2})
	for i := range 4 {
		c.PushNew(0, tile{id: i, bytes: 10})
		c.PushNew(1, tile{id: 100 + i, bytes: 100})
	}
	return c
}

func TestPolicy_ReclaimInOrder(t *testing.T) {
	t.Parallel()

	c := newAtlas(t)
	var evicted []int
	p := budget.New(budget.Options[tile]{
		Cost:  func(v tile) int64 { return v.bytes },
		Order: []uint8{0, 1},
		OnEvict: func(part uint8, v tile) {
			evicted = append(evicted, v.id)
		},
	})

	// Partition 0 holds 40 bytes, so one 100-byte tile from partition 1 is needed too.
	freed, n := p.Reclaim(c, 130)
	assert.Equal(t, int64(140), freed)
	assert.Equal(t, 5, n)
	assert.Equal(t, []int{0, 1, 2, 3, 100}, evicted)
	assert.Equal(t, 0, c.PartitionLen(0))
	assert.Equal(t, 3, c.PartitionLen(1))
	require.NoError(t, c.Validate())
}

func TestPolicy_StopsWhenSatisfied(t *testing.T) {
	t.Parallel()

	c := newAtlas(t)
	p := budget.New(budget.Options[tile]{Order: []uint8{1}})

	freed, n := p.Reclaim(c, 2)
	assert.Equal(t, int64(2), freed, "default cost is one per entry")
	assert.Equal(t, 2, n)
	assert.Equal(t, 4, c.PartitionLen(0), "unlisted partitions are untouched")

	v, ok := c.PeekOldest(1)
	require.True(t, ok)
	assert.Equal(t, 102, v.id)
}

func TestPolicy_NonPositiveNeed(t *testing.T) {
	t.Parallel()

	c := newAtlas(t)
	p := budget.New(budget.Options[tile]{})
	freed, n := p.Reclaim(c, 0)
	assert.Zero(t, freed)
	assert.Zero(t, n)
	assert.Equal(t, 8, c.Len())
}

func TestPolicy_BudgetNotMetLogsWarning(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := newAtlas(t)
	p := budget.New(budget.Options[tile]{
		Cost:   func(v tile) int64 { return v.bytes },
		Logger: log,
	})
	freed, n := p.Reclaim(c, 10_000)
	assert.Equal(t, int64(440), freed)
	assert.Equal(t, 8, n)
	assert.Equal(t, 0, c.Len())
	assert.Contains(t, buf.String(), "budget not met")
	assert.Contains(t, buf.String(), "component=budget")
}

func TestFunc_Adapter(t *testing.T) {
	t.Parallel()

	var r policy.Reclaimer[tile] = policy.Func[tile](func(c *cache.Cache[tile], need int64) (int64, int) {
		_, ok := c.PopOldest(1)
		if !ok {
			return 0, 0
		}
		return need, 1
	})
	c := newAtlas(t)
	freed, n := r.Reclaim(c, 7)
	assert.Equal(t, int64(7), freed)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, c.PartitionLen(1))
}

// Package budget implements a cost-budget eviction policy over partitioned
// caches: partitions are drained oldest-first, in a fixed priority order,
// until enough cost has been reclaimed.
package budget

import (
	"log/slog"

	"github.com/IvanBrykalov/lrutrack/cache"
	"github.com/IvanBrykalov/lrutrack/policy"
)

// Options configures a Policy. Zero values are safe:
//   - nil Cost    => every entry costs 1
//   - nil Order   => partitions 0..n-1 of the cache passed to Reclaim
//   - nil Logger  => logs are discarded
type Options[V any] struct {
	// Cost returns the weight of a value (e.g. texture bytes).
	// Negative results are treated as 0.
	Cost func(V) int64

	// Order lists partitions from first to last drained.
	// Partitions not listed are never evicted by this policy.
	Order []uint8

	// OnEvict is called for every popped value, after it left the cache.
	// Use it to release the resource behind the value.
	OnEvict func(partition uint8, v V)

	Logger *slog.Logger
}

// Policy reclaims cost by popping the oldest entries of each partition in order.
type Policy[V any] struct {
	opt Options[V]
	log *slog.Logger
}

// New constructs a budget policy.
func New[V any](opt Options[V]) *Policy[V] {
	log := opt.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Policy[V]{opt: opt, log: log.With(slog.String("component", "budget"))}
}

// Reclaim pops entries until freed >= need or every listed partition is empty.
// A non-positive need is a no-op.
func (p *Policy[V]) Reclaim(c *cache.Cache[V], need int64) (freed int64, evicted int) {
	if need <= 0 {
		return 0, 0
	}
	order := p.opt.Order
	if order == nil {
		order = make([]uint8, c.Partitions())
		for i := range order {
			order[i] = uint8(i)
		}
	}

	for _, part := range order {
		for freed < need {
			v, ok := c.PopOldest(part)
			if !ok {
				break
			}
			freed += p.cost(v)
			evicted++
			if cb := p.opt.OnEvict; cb != nil {
				cb(part, v)
			}
		}
		if freed >= need {
			break
		}
	}

	if freed < need {
		p.log.Warn("budget not met",
			slog.Int64("need", need),
			slog.Int64("freed", freed),
			slog.Int("evicted", evicted),
			slog.Int("resident", c.Len()))
	} else {
		p.log.Debug("reclaimed",
			slog.Int64("need", need),
			slog.Int64("freed", freed),
			slog.Int("evicted", evicted))
	}
	return freed, evicted
}

func (p *Policy[V]) cost(v V) int64 {
	if p.opt.Cost == nil {
		return 1
	}
	return max(p.opt.Cost(v), 0)
}

// Compile-time check: ensure Policy implements policy.Reclaimer.
var _ policy.Reclaimer[int] = (*Policy[int])(nil)

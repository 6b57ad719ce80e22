// Package prom exports cache.Metrics signals as Prometheus metrics.
package prom

import (
	"strconv"

	"github.com/IvanBrykalov/lrutrack/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges,
// labelled by partition. Safe for concurrent use; all Prometheus metric types
// are goroutine-safe.
type Adapter struct {
	hits       *prometheus.CounterVec
	misses     prometheus.Counter
	inserts    *prometheus.CounterVec
	migrations *prometheus.CounterVec
	evicts     *prometheus.CounterVec
	size       *prometheus.GaugeVec

	// Partition label values are preformatted to keep the hot path allocation-free.
	labels [cache.MaxPartitions]string
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		}
	}
	a := &Adapter{
		hits:   prometheus.NewCounterVec(opts("hits_total", "Touches of live entries"), []string{"partition"}),
		misses: prometheus.NewCounter(opts("misses_total", "Touches of evicted or unknown handles")),
		inserts: prometheus.NewCounterVec(
			opts("inserts_total", "Entries pushed as new"), []string{"partition"}),
		migrations: prometheus.NewCounterVec(
			opts("migrations_total", "Entries moved between partitions"), []string{"from", "to"}),
		evicts: prometheus.NewCounterVec(
			opts("evictions_total", "Entries evicted by partition and reason"), []string{"partition", "reason"}),
		size: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries per partition",
			ConstLabels: constLabels,
		}, []string{"partition"}),
	}
	for i := range a.labels {
		a.labels[i] = strconv.Itoa(i)
	}
	reg.MustRegister(a.hits, a.misses, a.inserts, a.migrations, a.evicts, a.size)
	return a
}

// Hit increments the hit counter of partition.
func (a *Adapter) Hit(partition uint8) { a.hits.WithLabelValues(a.labels[partition]).Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Insert increments the insert counter of partition.
func (a *Adapter) Insert(partition uint8) { a.inserts.WithLabelValues(a.labels[partition]).Inc() }

// Migrate counts an entry moving from one partition to another.
func (a *Adapter) Migrate(from, to uint8) {
	a.migrations.WithLabelValues(a.labels[from], a.labels[to]).Inc()
}

// Evict increments the eviction counter with partition and reason labels.
func (a *Adapter) Evict(partition uint8, r cache.EvictReason) {
	a.evicts.WithLabelValues(a.labels[partition], r.String()).Inc()
}

// Size updates the resident-entries gauge of partition.
func (a *Adapter) Size(partition uint8, entries int) {
	a.size.WithLabelValues(a.labels[partition]).Set(float64(entries))
}

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)

package cache

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is intended as the default when no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit(uint8)                {}
func (NoopMetrics) Miss()                    {}
func (NoopMetrics) Insert(uint8)             {}
func (NoopMetrics) Migrate(uint8, uint8)     {}
func (NoopMetrics) Evict(uint8, EvictReason) {}
func (NoopMetrics) Size(uint8, int)          {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}

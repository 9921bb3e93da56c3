package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxSamples bounds the delay samples kept per page type for percentile estimates.
const maxSamples = 4096

// Collector records page lookups. Every observation goes both to a Prometheus
// registry and to an in-memory aggregation served by the stats endpoint.
type Collector struct {
	mu sync.RWMutex

	startTime time.Time

	// page type -> outcome -> count
	counts map[string]map[string]int64
	// page type -> recent simulated delays in milliseconds
	delays map[string]*sampleRing

	registry *prometheus.Registry
	lookups  *prometheus.CounterVec
	delayMs  *prometheus.HistogramVec
	pages    *prometheus.GaugeVec
}

// NewCollector creates a collector with its own Prometheus registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Collector{
		startTime: time.Now(),
		counts:    make(map[string]map[string]int64),
		delays:    make(map[string]*sampleRing),
		registry:  reg,
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: MetricLookupsTotal,
			Help: "Page lookups by page type and outcome.",
		}, []string{LabelType, LabelOutcome}),
		delayMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricSimulatedDelay,
			Help:    "Simulated response delay by page type.",
			Buckets: []float64{0, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{LabelType}),
		pages: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricPages,
			Help: "Pages in the served graph by type.",
		}, []string{LabelType}),
	}
}

// Registry returns the Prometheus registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// SetPages publishes the page count of every type.
func (c *Collector) SetPages(dist map[models.BehaviorType]int) {
	for t, n := range dist {
		c.pages.WithLabelValues(string(t)).Set(float64(n))
	}
}

// ObserveLookup records one lookup. pageType is empty for unknown pages.
func (c *Collector) ObserveLookup(pageType models.BehaviorType, outcome string, delay time.Duration) {
	typ := string(pageType)
	if typ == "" {
		typ = TypeUnknown
	}
	ms := float64(delay) / float64(time.Millisecond)

	c.lookups.WithLabelValues(typ, outcome).Inc()
	if pageType != "" {
		c.delayMs.WithLabelValues(typ).Observe(ms)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[typ] == nil {
		c.counts[typ] = make(map[string]int64)
	}
	c.counts[typ][outcome]++
	if pageType != "" {
		ring := c.delays[typ]
		if ring == nil {
			ring = newSampleRing(maxSamples)
			c.delays[typ] = ring
		}
		ring.add(ms)
	}
}

// Snapshot returns the lookups recorded so far.
func (c *Collector) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := &Snapshot{
		StartTime: c.startTime,
		Uptime:    time.Since(c.startTime).Round(time.Millisecond).String(),
		ByType:    make(map[string]*TypeStats, len(c.counts)),
	}
	for typ, outcomes := range c.counts {
		ts := &TypeStats{Outcomes: make(map[string]int64, len(outcomes))}
		for o, n := range outcomes {
			ts.Outcomes[o] = n
			ts.Lookups += n
		}
		if ring := c.delays[typ]; ring != nil {
			ts.DelayMs = calculateAggregation(ring.values())
		}
		s.ByType[typ] = ts
		s.TotalLookups += ts.Lookups
	}
	return s
}

// Reset clears the in-memory aggregation. Prometheus counters are monotonic and keep their values.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts = make(map[string]map[string]int64)
	c.delays = make(map[string]*sampleRing)
	c.startTime = time.Now()
}

// sampleRing keeps the most recent n samples.
type sampleRing struct {
	buf  []float64
	next int
	full bool
}

func newSampleRing(n int) *sampleRing {
	return &sampleRing{buf: make([]float64, n)}
}

func (r *sampleRing) add(v float64) {
	r.buf[r.next] = v
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
}

func (r *sampleRing) values() []float64 {
	if r.full {
		out := make([]float64, len(r.buf))
		copy(out, r.buf)
		return out
	}
	out := make([]float64, r.next)
	copy(out, r.buf[:r.next])
	return out
}

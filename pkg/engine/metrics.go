package engine

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors the render engine publishes.
// A nil *Metrics is valid everywhere it is used: every method is a
// no-op against a nil receiver, so wiring metrics is optional.
type Metrics struct {
	renderSeconds prometheus.Histogram
	bufferCount   prometheus.Gauge
	rebuildTotal  prometheus.Counter
	suspended     prometheus.Gauge
	faultsTotal   *prometheus.CounterVec
}

// NewMetrics registers a fresh set of collectors against reg and
// returns them. Pass prometheus.DefaultRegisterer to publish on the
// default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		renderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "graphengine",
			Subsystem: "render",
			Name:      "block_seconds",
			Help:      "Wall time spent executing one compiled plan.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 16),
		}),
		bufferCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "graphengine",
			Subsystem: "render",
			Name:      "buffer_pool_size",
			Help:      "Number of audio buffers held by the active pool.",
		}),
		rebuildTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "graphengine",
			Subsystem: "builder",
			Name:      "rebuilds_total",
			Help:      "Number of plans compiled and swapped in.",
		}),
		suspended: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "graphengine",
			Subsystem: "render",
			Name:      "suspended_nodes",
			Help:      "Number of nodes currently suspended after a render fault.",
		}),
		faultsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphengine",
			Subsystem: "render",
			Name:      "node_faults_total",
			Help:      "Number of render panics recovered, by node id.",
		}, []string{"node_id"}),
	}
	reg.MustRegister(m.renderSeconds, m.bufferCount, m.rebuildTotal, m.suspended, m.faultsTotal)
	return m
}

func (m *Metrics) observeRender(seconds float64) {
	if m == nil {
		return
	}
	m.renderSeconds.Observe(seconds)
}

func (m *Metrics) setBufferCount(n int) {
	if m == nil {
		return
	}
	m.bufferCount.Set(float64(n))
}

func (m *Metrics) incRebuilds() {
	if m == nil {
		return
	}
	m.rebuildTotal.Inc()
}

func (m *Metrics) setSuspendedCount(n int) {
	if m == nil {
		return
	}
	m.suspended.Set(float64(n))
}

// FaultCounter tallies render faults per node and publishes them to
// the node_faults_total vector. It is
// safe for concurrent use from the audio thread; the audio thread
// only ever increments it.
type FaultCounter struct {
	mu      sync.Mutex
	counts  map[uint32]int
	metrics *Metrics
}

// NewFaultCounter returns a counter that publishes to metrics, which
// may be nil.
func NewFaultCounter(metrics *Metrics) *FaultCounter {
	return &FaultCounter{counts: make(map[uint32]int), metrics: metrics}
}

// Record notes a recovered panic from nodeID. reason is the recovered
// value, kept only for logging by the caller; FaultCounter does not
// log itself.
func (f *FaultCounter) Record(nodeID uint32, reason any) {
	f.mu.Lock()
	f.counts[nodeID]++
	f.mu.Unlock()

	if f.metrics != nil {
		f.metrics.faultsTotal.WithLabelValues(strconv.FormatUint(uint64(nodeID), 10)).Inc()
	}
}

// Count returns the number of recorded faults for nodeID.
func (f *FaultCounter) Count(nodeID uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[nodeID]
}

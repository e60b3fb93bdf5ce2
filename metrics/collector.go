package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/BaSui01/ragflow/types"
)

// Collector maintains process-wide request counters and rolling latency
// averages. Averages are running means: new_avg = (old_avg*(n-1)+sample)/n,
// so no per-request history is retained. Writes are serialized by a mutex;
// Snapshot takes the same lock so readers see a consistent view.
type Collector struct {
	mu sync.Mutex

	total   uint64
	success uint64
	failed  uint64
	samples uint64

	avgRetrieval  time.Duration
	avgProcessing time.Duration
	avgTotal      time.Duration

	prom   *promMetrics
	logger *zap.Logger
}

// promMetrics is the optional Prometheus export side.
type promMetrics struct {
	requestsTotal     *prometheus.CounterVec
	retrievalDuration prometheus.Histogram
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
}

// NewCollector creates a collector. logger may be nil.
func NewCollector(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}
}

// WithPrometheus registers Prometheus counters and histograms on the given
// registerer under the namespace and returns the collector for chaining.
func (c *Collector) WithPrometheus(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	c.prom = &promMetrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rag_requests_total",
				Help:      "Total number of RAG retrieval requests",
			},
			[]string{"status"},
		),
		retrievalDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rag_retrieval_duration_seconds",
				Help:      "Source retrieval duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),
		cacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rag_cache_hits_total",
				Help:      "Total number of result cache hits",
			},
		),
		cacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rag_cache_misses_total",
				Help:      "Total number of result cache misses",
			},
		),
	}

	c.logger.Info("prometheus metrics registered", zap.String("namespace", namespace))
	return c
}

// RecordSuccess records one successful request with its phase timings.
func (c *Collector) RecordSuccess(retrieval, processing time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	c.success++
	c.samples++

	n := time.Duration(c.samples)
	c.avgRetrieval = (c.avgRetrieval*(n-1) + retrieval) / n
	c.avgProcessing = (c.avgProcessing*(n-1) + processing) / n
	c.avgTotal = (c.avgTotal*(n-1) + retrieval + processing) / n

	if c.prom != nil {
		c.prom.requestsTotal.WithLabelValues("success").Inc()
		c.prom.retrievalDuration.Observe(retrieval.Seconds())
	}
}

// RecordCachedSuccess records a request served from the result cache. The
// request counts toward the totals but contributes no latency sample, so a
// growing hit rate does not drag the averages toward zero.
func (c *Collector) RecordCachedSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	c.success++

	if c.prom != nil {
		c.prom.requestsTotal.WithLabelValues("success").Inc()
	}
}

// RecordFailure records one failed request.
func (c *Collector) RecordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	c.failed++

	if c.prom != nil {
		c.prom.requestsTotal.WithLabelValues("failure").Inc()
	}
}

// RecordCacheHit records a result cache hit.
func (c *Collector) RecordCacheHit() {
	if c.prom != nil {
		c.prom.cacheHits.Inc()
	}
}

// RecordCacheMiss records a result cache miss.
func (c *Collector) RecordCacheMiss() {
	if c.prom != nil {
		c.prom.cacheMisses.Inc()
	}
}

// Snapshot returns a consistent copy of the current counters.
func (c *Collector) Snapshot() types.RAGMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return types.RAGMetrics{
		TotalRequests:      c.total,
		SuccessfulRequests: c.success,
		FailedRequests:     c.failed,
		AvgRetrievalTime:   c.avgRetrieval,
		AvgProcessingTime:  c.avgProcessing,
		AvgTotalTime:       c.avgTotal,
	}
}

package index

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics reports indexing activity to Prometheus. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	documents     *prometheus.CounterVec
	batchDuration prometheus.Histogram
	searches      prometheus.Counter
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// DefaultMetrics returns metrics registered with the global registry.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics registers the index collectors with reg (the default
// registerer when nil). Collectors already registered under the same name
// are reused; any other registration error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	documents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slidekit",
			Subsystem: "index",
			Name:      "documents_total",
			Help:      "Documents sent to the search index, by outcome.",
		},
		[]string{"status"},
	)
	batchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "slidekit",
			Subsystem: "index",
			Name:      "batch_duration_seconds",
			Help:      "Time spent on one bulk request.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	searches := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slidekit",
			Subsystem: "index",
			Name:      "searches_total",
			Help:      "Search and scan requests issued.",
		},
	)

	collectors := []prometheus.Collector{documents, batchDuration, searches}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch target := collector.(type) {
				case *prometheus.CounterVec:
					documents = already.ExistingCollector.(*prometheus.CounterVec)
				case prometheus.Histogram:
					batchDuration = already.ExistingCollector.(prometheus.Histogram)
				case prometheus.Counter:
					if target == searches {
						searches = already.ExistingCollector.(prometheus.Counter)
					}
				}
				continue
			}
			panic(err)
		}
	}

	return &Metrics{documents: documents, batchDuration: batchDuration, searches: searches}
}

// ObserveBatch records one bulk request.
func (m *Metrics) ObserveBatch(succeeded, failed int, d time.Duration) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues("indexed").Add(float64(succeeded))
	m.documents.WithLabelValues("failed").Add(float64(failed))
	m.batchDuration.Observe(d.Seconds())
}

// IncSearch counts a search or scan request.
func (m *Metrics) IncSearch() {
	if m == nil {
		return
	}
	m.searches.Inc()
}

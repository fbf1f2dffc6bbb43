package configloader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cycle outcome labels.
const (
	OutcomeFresh   = "fresh"
	OutcomeCached  = "cached"
	OutcomeEmpty   = "empty"
	OutcomeDropped = "dropped"
)

// Metrics holds the Prometheus collectors updated by a Loader.
type Metrics struct {
	cycles        *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	fetchDuration prometheus.Histogram
}

// NewMetrics creates the loader collectors and registers them with registry.
// A nil registry leaves them unregistered.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "movs",
			Subsystem: "config",
			Name:      "cycles_total",
			Help:      "Load cycles by outcome",
		}, []string{"outcome"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "movs",
			Subsystem: "config",
			Name:      "fetch_failures_total",
			Help:      "Failed remote fetches by branch",
		}, []string{"branch"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "movs",
			Subsystem: "config",
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of the joint remote fetch per cycle",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if registry != nil {
		registry.MustRegister(m.cycles, m.fetchFailures, m.fetchDuration)
	}
	return m
}

func (m *Metrics) observeCycle(outcome string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeFailure(branch string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(branch).Inc()
}

func (m *Metrics) observeDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
}

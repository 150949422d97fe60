package reactive

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "signalgraph"

// metrics is nil when no registry was configured; every method is nil safe.
type metrics struct {
	flushesTotal   prometheus.Counter
	flushPasses    prometheus.Histogram
	runsTotal      *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	cyclesTotal    prometheus.Counter
	droppedTotal   prometheus.Counter
	pendingAtFlush prometheus.Histogram
}

func newMetrics(c config) *metrics {
	if c.registry == nil {
		return nil
	}
	factory := promauto.With(c.registry)
	labels := prometheus.Labels{"system": c.name}

	return &metrics{
		flushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "flushes_total",
			Help:        "Total number of scheduler flushes that had pending work",
			ConstLabels: labels,
		}),
		flushPasses: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   metricsNamespace,
			Name:        "flush_passes",
			Help:        "Number of passes taken per flush",
			ConstLabels: labels,
			Buckets:     []float64{1, 2, 3, 5, 10, 25, 50, 100},
		}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "dependent_runs_total",
			Help:        "Total number of derived recomputations and effect runs",
			ConstLabels: labels,
		}, []string{"kind"}),
		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "dependent_errors_total",
			Help:        "Total number of failed derived recomputations and effect runs",
			ConstLabels: labels,
		}, []string{"kind"}),
		cyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "cyclic_updates_total",
			Help:        "Total number of flushes aborted by cycle detection",
			ConstLabels: labels,
		}),
		droppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "dropped_disposed_total",
			Help:        "Pending runs dropped because their dependent was disposed",
			ConstLabels: labels,
		}),
		pendingAtFlush: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   metricsNamespace,
			Name:        "pending_at_flush",
			Help:        "Number of pending dependents when a flush starts",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

func (m *metrics) flushed(passes, pending int) {
	if m == nil {
		return
	}
	m.flushesTotal.Inc()
	m.flushPasses.Observe(float64(passes))
	m.pendingAtFlush.Observe(float64(pending))
}

func (m *metrics) ran(kind nodeKind) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(kind.String()).Inc()
}

func (m *metrics) failed(kind nodeKind) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(kind.String()).Inc()
}

func (m *metrics) cycle() {
	if m == nil {
		return
	}
	m.cyclesTotal.Inc()
}

func (m *metrics) dropped() {
	if m == nil {
		return
	}
	m.droppedTotal.Inc()
}

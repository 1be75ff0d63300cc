package node

import (
	"net/http"
	"time"

	"github.com/LeJamon/goPayloadd/internal/core/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the node's Prometheus collectors. Each Metrics owns its
// registry so several nodes can live in one process.
type Metrics struct {
	Registry *prometheus.Registry

	txTotal    *prometheus.CounterVec
	txDuration *prometheus.HistogramVec
	sequence   prometheus.Gauge
	journalErr prometheus.Counter
}

// NewMetrics creates the collectors. cache may be nil.
func NewMetrics(cache func() state.CacheStats) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		txTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "payloadd",
				Subsystem: "tx",
				Name:      "submitted_total",
				Help:      "Total number of submitted transactions by type and result.",
			},
			[]string{"type", "result"},
		),
		txDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "payloadd",
				Subsystem: "tx",
				Name:      "apply_duration_seconds",
				Help:      "Duration of transaction application.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100us to ~1.6s
			},
			[]string{"type"},
		),
		sequence: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "payloadd",
			Subsystem: "engine",
			Name:      "sequence",
			Help:      "Sequence of the last applied transaction.",
		}),
		journalErr: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "payloadd",
			Subsystem: "journal",
			Name:      "append_errors_total",
			Help:      "Journal appends that failed after the transaction was applied.",
		}),
	}

	m.Registry.MustRegister(
		m.txTotal,
		m.txDuration,
		m.sequence,
		m.journalErr,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)

	if cache != nil {
		m.Registry.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: "payloadd",
				Subsystem: "state_cache",
				Name:      "hits_total",
				Help:      "State cache hits.",
			}, func() float64 { return float64(cache().Hits) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: "payloadd",
				Subsystem: "state_cache",
				Name:      "misses_total",
				Help:      "State cache misses.",
			}, func() float64 { return float64(cache().Misses) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: "payloadd",
				Subsystem: "state_cache",
				Name:      "entries",
				Help:      "Entries held in the state cache.",
			}, func() float64 { return float64(cache().Entries) }),
		)
	}
	return m
}

// Handler exposes the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(txType, result string, sequence uint64, d time.Duration) {
	if m == nil {
		return
	}
	m.txTotal.WithLabelValues(txType, result).Inc()
	m.txDuration.WithLabelValues(txType).Observe(d.Seconds())
	m.sequence.Set(float64(sequence))
}

func (m *Metrics) journalFailed() {
	if m == nil {
		return
	}
	m.journalErr.Inc()
}

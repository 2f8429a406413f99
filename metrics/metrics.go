package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soocke/rustlens/domain/lifecycle"
	"github.com/soocke/rustlens/domain/request"
)

// Metrics holds the detection client's counters. A nil *Metrics is a no-op.
type Metrics struct {
	// Display handles
	HandlesCreated  atomic.Uint64
	HandlesReleased atomic.Uint64
	LiveHandles     atomic.Int64

	// Requests
	Submissions atomic.Uint64
	Successes   atomic.Uint64
	Discarded   atomic.Uint64
	Busy        atomic.Uint64

	failures *prometheus.CounterVec
	latency  prometheus.Histogram

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own Prometheus registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rustlens_detect_failures_total",
			Help: "Detection requests that ended in failure, by error kind",
		}, []string{"kind"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rustlens_detect_duration_seconds",
			Help:    "Latency of accepted detection responses",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	m.registry.MustRegister(m.failures, m.latency)

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "rustlens_detect_submissions_total",
			Help: "Detection requests sent",
		},
		func() float64 { return float64(m.Submissions.Load()) },
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "rustlens_detect_successes_total",
			Help: "Detection responses accepted",
		},
		func() float64 { return float64(m.Successes.Load()) },
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "rustlens_detect_discarded_total",
			Help: "Late responses dropped because a newer selection or reset superseded them",
		},
		func() float64 { return float64(m.Discarded.Load()) },
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "rustlens_detect_busy_total",
			Help: "Submits rejected while a request was pending",
		},
		func() float64 { return float64(m.Busy.Load()) },
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "rustlens_handles_created_total",
			Help: "Display handles acquired",
		},
		func() float64 { return float64(m.HandlesCreated.Load()) },
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "rustlens_handles_released_total",
			Help: "Display handles released",
		},
		func() float64 { return float64(m.HandlesReleased.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "rustlens_handles_live",
			Help: "Display handles currently held",
		},
		func() float64 { return float64(m.LiveHandles.Load()) },
	))
}

// LifecycleHooks returns hooks that keep the handle counters current.
func (m *Metrics) LifecycleHooks() lifecycle.Hooks {
	if m == nil {
		return lifecycle.Hooks{}
	}
	return lifecycle.Hooks{
		OnAcquire: func(string) {
			m.HandlesCreated.Add(1)
			m.LiveHandles.Add(1)
		},
		OnRelease: func(string) {
			m.HandlesReleased.Add(1)
			m.LiveHandles.Add(-1)
		},
	}
}

// RequestHooks returns hooks that count coordinator outcomes.
func (m *Metrics) RequestHooks() request.Hooks {
	if m == nil {
		return request.Hooks{}
	}
	return request.Hooks{
		OnSubmit:  func() { m.Submissions.Add(1) },
		OnSuccess: m.observeSuccess,
		OnFailure: func(kind string) { m.failures.WithLabelValues(kind).Inc() },
		OnDiscard: func() { m.Discarded.Add(1) },
		OnBusy:    func() { m.Busy.Add(1) },
	}
}

func (m *Metrics) observeSuccess(elapsed time.Duration) {
	m.Successes.Add(1)
	m.latency.Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server returns an HTTP server exposing /metrics on addr.
func (m *Metrics) Server(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

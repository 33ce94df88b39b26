// Package telemetry provides Prometheus instrumentation and a small status
// server for the refresh daemon.
package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the refresh instruments. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	cycles   *prometheus.CounterVec
	drops    prometheus.Counter
	duration prometheus.Histogram
	tracked  prometheus.Gauge

	mu   sync.RWMutex
	last LastCycle
}

// LastCycle describes the most recent refresh cycle.
type LastCycle struct {
	Trigger  string        `json:"trigger"`
	Phase    string        `json:"phase"`
	Drops    int           `json:"drops"`
	Duration time.Duration `json:"-"`
	At       time.Time     `json:"at"`
}

// NewMetrics registers the refresh instruments on a fresh registry together
// with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salecheck_refresh_cycles_total",
			Help: "Refresh cycles by trigger and terminal phase.",
		}, []string{"trigger", "phase"}),
		drops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salecheck_price_drops_total",
			Help: "Price drops detected across all committed cycles.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "salecheck_refresh_duration_seconds",
			Help:    "Duration of refresh cycles in seconds.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 15, 30},
		}),
		tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "salecheck_tracked_products",
			Help: "Number of products currently tracked.",
		}),
	}
	m.registry.MustRegister(
		m.cycles,
		m.drops,
		m.duration,
		m.tracked,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry for handlers and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRefresh records a finished cycle.
func (m *Metrics) ObserveRefresh(trigger, phase string, drops int, duration time.Duration) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(trigger, phase).Inc()
	if drops > 0 {
		m.drops.Add(float64(drops))
	}
	m.duration.Observe(duration.Seconds())

	m.mu.Lock()
	m.last = LastCycle{Trigger: trigger, Phase: phase, Drops: drops, Duration: duration, At: time.Now()}
	m.mu.Unlock()
}

// SetTracked records the tracked product count.
func (m *Metrics) SetTracked(n int) {
	if m == nil {
		return
	}
	m.tracked.Set(float64(n))
}

// Last returns the most recent cycle and whether any cycle has been observed.
func (m *Metrics) Last() (LastCycle, bool) {
	if m == nil {
		return LastCycle{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, !m.last.At.IsZero()
}

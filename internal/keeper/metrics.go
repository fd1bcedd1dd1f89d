// internal/keeper/metrics.go
package keeper

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the keeper's process-wide counters. Only the executor and
// the scheduler loop mutate them; the periodic reporter reads snapshots.
// The prometheus mirror lives on an owned registry, not the global one,
// so tests can construct as many instances as they need.
type Metrics struct {
	mu                         sync.RWMutex
	successCount               uint64
	failureCount               uint64
	lastSuccessSlot            uint64
	consecutiveBlockhashErrors int

	registry         *prometheus.Registry
	successTotal     prometheus.Counter
	failureTotal     prometheus.Counter
	lastSuccessGauge prometheus.Gauge
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	SuccessCount               uint64
	FailureCount               uint64
	LastSuccessSlot            uint64
	ConsecutiveBlockhashErrors int
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		successTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keeper_crank_success_total",
			Help: "Total number of successfully submitted cranks",
		}),
		failureTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keeper_crank_failure_total",
			Help: "Total number of failed crank attempts",
		}),
		lastSuccessGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keeper_last_success_slot",
			Help: "Slot observed at the last successful crank submission",
		}),
	}
	m.registry.MustRegister(m.successTotal, m.failureTotal, m.lastSuccessGauge)
	return m
}

// RecordSuccess registers a successful submission at the given slot and
// resets the consecutive blockhash-error counter. A zero slot keeps the
// previous last-success marker (the post-submit slot read failed).
func (m *Metrics) RecordSuccess(slot uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.successCount++
	m.consecutiveBlockhashErrors = 0
	if slot != 0 {
		m.lastSuccessSlot = slot
		m.lastSuccessGauge.Set(float64(slot))
	}
	m.successTotal.Inc()
}

// RecordFailure registers one failed crank attempt.
func (m *Metrics) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failureCount++
	m.failureTotal.Inc()
}

// SetBlockhashErrors mirrors the executor's consecutive-expiry counter.
func (m *Metrics) SetBlockhashErrors(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.consecutiveBlockhashErrors = n
}

// Snapshot returns a copy of the counters reflecting the latest completed
// mutation.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		SuccessCount:               m.successCount,
		FailureCount:               m.failureCount,
		LastSuccessSlot:            m.lastSuccessSlot,
		ConsecutiveBlockhashErrors: m.consecutiveBlockhashErrors,
	}
}

// Handler serves the prometheus mirror of the counters.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package observability registers and records Prometheus metrics for the
// memory subsystem.
package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	storeTotal       *prometheus.CounterVec
	storeDuration    prometheus.Histogram
	retrieveTotal    *prometheus.CounterVec
	retrieveDuration prometheus.Histogram
	retrieveTokens   prometheus.Histogram

	routeTotal      *prometheus.CounterVec
	routeCacheTotal *prometheus.CounterVec

	accessUpdateTotal *prometheus.CounterVec
	prunedTotal       prometheus.Counter

	degradedMode  prometheus.Gauge
	poolAcquired  prometheus.Gauge
	poolIdle      prometheus.Gauge
	poolExhausted prometheus.Counter
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			storeTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "memory_store_total",
					Help: "Total store operations by status.",
				},
				[]string{"status"},
			),
			storeDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "memory_store_duration_seconds",
					Help:    "Store operation duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			retrieveTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "memory_retrieve_total",
					Help: "Total retrieve operations by status.",
				},
				[]string{"status"},
			),
			retrieveDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "memory_retrieve_duration_seconds",
					Help:    "Retrieve operation duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			retrieveTokens: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "memory_retrieve_tokens",
					Help:    "Tokens returned per retrieve operation.",
					Buckets: []float64{0, 100, 250, 500, 1000, 1500, 2000, 2400},
				},
			),
			routeTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "memory_route_total",
					Help: "Total routing decisions by category.",
				},
				[]string{"category"},
			),
			routeCacheTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "memory_route_cache_total",
					Help: "Routing cache lookups by outcome.",
				},
				[]string{"outcome"},
			),
			accessUpdateTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "memory_access_update_total",
					Help: "Usage-tracking updates by status.",
				},
				[]string{"status"},
			),
			prunedTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "memory_pruned_total",
					Help: "Total records removed by the retention sweeper.",
				},
			),
			degradedMode: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "memory_degraded_mode",
					Help: "Degraded mode active state (1 active, 0 inactive).",
				},
			),
			poolAcquired: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "memory_pool_acquired_conns",
					Help: "Connections currently acquired from the pool.",
				},
			),
			poolIdle: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "memory_pool_idle_conns",
					Help: "Idle connections in the pool.",
				},
			),
			poolExhausted: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "memory_pool_timeouts_total",
					Help: "Total pool acquisition timeouts.",
				},
			),
		}

		prometheus.MustRegister(
			m.storeTotal,
			m.storeDuration,
			m.retrieveTotal,
			m.retrieveDuration,
			m.retrieveTokens,
			m.routeTotal,
			m.routeCacheTotal,
			m.accessUpdateTotal,
			m.prunedTotal,
			m.degradedMode,
			m.poolAcquired,
			m.poolIdle,
			m.poolExhausted,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

func RecordStore(duration time.Duration, success bool) {
	m := getMetrics()
	m.storeTotal.WithLabelValues(statusLabel(success)).Inc()
	m.storeDuration.Observe(duration.Seconds())
}

func RecordRetrieve(duration time.Duration, tokens int, success bool) {
	m := getMetrics()
	m.retrieveTotal.WithLabelValues(statusLabel(success)).Inc()
	m.retrieveDuration.Observe(duration.Seconds())
	m.retrieveTokens.Observe(float64(tokens))
}

func RecordRoute(category string) {
	getMetrics().routeTotal.WithLabelValues(category).Inc()
}

func RecordRouteCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	getMetrics().routeCacheTotal.WithLabelValues(outcome).Inc()
}

func RecordAccessUpdate(success bool) {
	getMetrics().accessUpdateTotal.WithLabelValues(statusLabel(success)).Inc()
}

func RecordPruned(count int64) {
	getMetrics().prunedTotal.Add(float64(count))
}

func SetDegradedMode(active bool) {
	value := 0.0
	if active {
		value = 1.0
	}
	getMetrics().degradedMode.Set(value)
}

func SetPoolStats(acquired, idle int32) {
	m := getMetrics()
	m.poolAcquired.Set(float64(acquired))
	m.poolIdle.Set(float64(idle))
}

func RecordPoolTimeout() {
	getMetrics().poolExhausted.Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

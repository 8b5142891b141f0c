// Package telemetry holds the Prometheus instrumentation of routeradar.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "routeradar"

var (
	// DutyRuns counts completed duty runs.
	DutyRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duty_runs_total",
			Help:      "Total number of scheduler duty runs",
		},
		[]string{"duty"},
	)

	// DutySkips counts ticks dropped because the previous run was still going.
	DutySkips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duty_skips_total",
			Help:      "Total number of duty ticks skipped while the previous run was in progress",
		},
		[]string{"duty"},
	)

	DutyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "duty_duration_seconds",
			Help:      "Duration of scheduler duty runs",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		},
		[]string{"duty"},
	)

	// Fetches counts device stats fetches by protocol and result.
	Fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_fetches_total",
			Help:      "Total number of device stats fetches",
		},
		[]string{"method", "result"},
	)

	// Alerts counts alert transitions.
	Alerts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Total number of alerts opened or cleared",
		},
		[]string{"kind", "transition"},
	)

	// LiveSessions is the number of devices under high-frequency polling.
	LiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_sessions",
			Help:      "Number of devices with an active realtime session",
		},
	)

	RealtimeSeries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_series",
			Help:      "Number of series held in the realtime store",
		},
	)

	// QueryCache counts traffic query cache lookups.
	QueryCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_lookups_total",
			Help:      "Total number of traffic query cache lookups",
		},
		[]string{"result"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the default Prometheus registry.
// It is safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		for _, c := range []prometheus.Collector{
			DutyRuns, DutySkips, DutyDuration, Fetches, Alerts, LiveSessions, RealtimeSeries, QueryCache,
		} {
			_ = prometheus.DefaultRegisterer.Register(c)
		}
	})
}

// CacheStats feeds QueryCache. It satisfies traffic.StatsRecorder.
type CacheStats struct{}

func (CacheStats) CacheHit()  { QueryCache.WithLabelValues("hit").Inc() }
func (CacheStats) CacheMiss() { QueryCache.WithLabelValues("miss").Inc() }

// FetchResult records one fetch outcome.
func FetchResult(method string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	Fetches.WithLabelValues(method, result).Inc()
}

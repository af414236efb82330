package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "dashboard_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	aggregationTotal   *prometheus.CounterVec
	aggregationLatency *prometheus.HistogramVec

	chartFallbacks *prometheus.CounterVec

	snapshotRuns *prometheus.CounterVec
)

// Init registers dashboard metrics in the default registry.
func Init() {
	registerOnce.Do(func() {
		upstreamRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "upstream_requests_total",
				Help: "Total REST API requests by collection and result",
			},
			[]string{"collection", "result"},
		)
		upstreamLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "upstream_latency_seconds",
				Help:    "REST API request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"collection"},
		)
		aggregationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "aggregations_total",
				Help: "Total dashboard aggregations by operation and result",
			},
			[]string{"operation", "result"},
		)
		aggregationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "aggregation_latency_seconds",
				Help:    "Dashboard aggregation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)
		chartFallbacks = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "chart_fallbacks_total",
				Help: "Chart responses served without API data, by fallback mode",
			},
			[]string{"mode"},
		)
		snapshotRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshot_runs_total",
				Help: "Scheduled dashboard snapshot runs by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			upstreamRequests,
			upstreamLatency,
			aggregationTotal,
			aggregationLatency,
			chartFallbacks,
			snapshotRuns,
		)
	})
}

// ObserveUpstream records one REST API call.
func ObserveUpstream(collection string, err error, duration time.Duration) {
	if collection == "" {
		collection = "unknown"
	}
	if upstreamRequests != nil {
		upstreamRequests.WithLabelValues(collection, resultOf(err)).Inc()
	}
	if upstreamLatency != nil {
		upstreamLatency.WithLabelValues(collection).Observe(duration.Seconds())
	}
}

// ObserveAggregation records latency and result of a composed dashboard call.
func ObserveAggregation(operation string, err error, duration time.Duration) {
	if aggregationTotal != nil {
		aggregationTotal.WithLabelValues(operation, resultOf(err)).Inc()
	}
	if aggregationLatency != nil {
		aggregationLatency.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// IncChartFallback increments the fallback counter for the given mode.
func IncChartFallback(mode string) {
	if chartFallbacks != nil {
		chartFallbacks.WithLabelValues(mode).Inc()
	}
}

// IncSnapshotRun increments the snapshot run counter.
func IncSnapshotRun(err error) {
	if snapshotRuns != nil {
		snapshotRuns.WithLabelValues(resultOf(err)).Inc()
	}
}

func resultOf(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestInitRegistersDashboardMetrics(t *testing.T) {
	Init()
	Init()

	ObserveUpstream("/user/projects", nil, 10*time.Millisecond)
	ObserveUpstream("", errors.New("boom"), time.Millisecond)
	ObserveAggregation("stats", nil, time.Millisecond)
	IncChartFallback("unavailable")
	IncSnapshotRun(errors.New("boom"))

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := make(map[string]bool)
	for _, family := range families {
		found[family.GetName()] = true
	}
	for _, name := range []string{
		"dashboard_upstream_requests_total",
		"dashboard_upstream_latency_seconds",
		"dashboard_aggregations_total",
		"dashboard_aggregation_latency_seconds",
		"dashboard_chart_fallbacks_total",
		"dashboard_snapshot_runs_total",
	} {
		if !found[name] {
			t.Fatalf("metric %s not registered", name)
		}
	}
}

func TestResultOf(t *testing.T) {
	if resultOf(nil) != resultSuccess || resultOf(errors.New("x")) != resultError {
		t.Fatal("unexpected result labels")
	}
}

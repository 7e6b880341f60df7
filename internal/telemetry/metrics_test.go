package telemetry

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupTestMetrics installs metrics backed by a manual reader
func setupTestMetrics(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := newMetrics(mp)
	if err != nil {
		t.Fatalf("newMetrics failed: %v", err)
	}

	meterMu.Lock()
	metrics = m
	meterMu.Unlock()

	t.Cleanup(func() {
		meterMu.Lock()
		metrics = nil
		meterMu.Unlock()
		_ = mp.Shutdown(context.Background())
	})

	return reader
}

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestRecordersWithoutInitAreNoops(t *testing.T) {
	ctx := context.Background()

	RecordCommandInvocation(ctx, "generate", "success", time.Second)
	RecordProviderCall(ctx, "openai", "generate", "success", time.Second)
	RecordProviderError(ctx, "openai", "generate", "SERVICE-002")
	RecordCycle(ctx, "playwright", true)
	RecordVerdict(ctx, "playwright", "ready", 0)
}

func TestRecorders(t *testing.T) {
	reader := setupTestMetrics(t)
	ctx := context.Background()

	RecordCommandInvocation(ctx, "generate", "success", 2*time.Second)
	RecordProviderCall(ctx, "openai", "generate", "success", time.Second)
	RecordProviderCall(ctx, "openai", "check", "error", time.Second)
	RecordProviderError(ctx, "openai", "check", "SERVICE-002")
	RecordCycle(ctx, "playwright", false)
	RecordCycle(ctx, "playwright", true)
	RecordVerdict(ctx, "playwright", "needs-update", 3)

	sums := collectSums(t, reader)

	want := map[string]int64{
		"scriptsmith.command.invocations": 1,
		"scriptsmith.provider.calls":      2,
		"scriptsmith.provider.errors":     1,
		"scriptsmith.session.cycles":      2,
		"scriptsmith.session.verdicts":    1,
	}
	for name, value := range want {
		if sums[name] != value {
			t.Errorf("%s = %d, want %d", name, sums[name], value)
		}
	}
}

func TestInitMetricsProviderDisabled(t *testing.T) {
	shutdown, err := InitMetricsProvider(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("InitMetricsProvider failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if GetMetrics().CycleCounter != nil {
		t.Error("disabled metrics should have no instruments")
	}
	if err := ForceFlushMetrics(context.Background()); err != nil {
		t.Fatalf("ForceFlushMetrics failed: %v", err)
	}
	if err := ShutdownMetrics(context.Background()); err != nil {
		t.Fatalf("ShutdownMetrics failed: %v", err)
	}
}

// Package telemetry provides OpenTelemetry tracing and metrics for scriptsmith.
// Exporters write to stderr when enabled; otherwise noop providers are used.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var (
	// globalMeterProvider holds the current meter provider
	globalMeterProvider metric.MeterProvider
	// globalMetricsShutdown holds the shutdown function for metrics
	globalMetricsShutdown func(context.Context) error
	// meterMu protects access to global meter provider state
	meterMu sync.RWMutex
	// metrics holds all registered metrics
	metrics *Metrics
)

// Metrics holds all registered OpenTelemetry metrics
type Metrics struct {
	// Command metrics
	CommandCounter  metric.Int64Counter
	CommandDuration metric.Float64Histogram

	// Provider metrics
	ProviderCallCounter  metric.Int64Counter
	ProviderLatency      metric.Float64Histogram
	ProviderErrorCounter metric.Int64Counter

	// Session metrics
	CycleCounter   metric.Int64Counter
	VerdictCounter metric.Int64Counter
}

// InitMetricsProvider initializes the OpenTelemetry metrics provider.
// Returns a shutdown function and any initialization error.
func InitMetricsProvider(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	meterMu.Lock()
	defer meterMu.Unlock()

	if !cfg.Enabled {
		globalMeterProvider = otel.GetMeterProvider()
		globalMetricsShutdown = func(context.Context) error { return nil }
		metrics = nil
		return globalMetricsShutdown, nil
	}

	opts := []stdoutmetric.Option{stdoutmetric.WithWriter(cfg.writer())}
	if cfg.PrettyPrint {
		opts = append(opts, stdoutmetric.WithPrettyPrint())
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(createResource(cfg)),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	globalMeterProvider = mp
	otel.SetMeterProvider(mp)

	globalMetricsShutdown = func(shutdownCtx context.Context) error {
		return mp.Shutdown(shutdownCtx)
	}

	m, err := newMetrics(mp)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics = m

	return globalMetricsShutdown, nil
}

// newMetrics creates all metric instruments on the given provider
func newMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter("github.com/felixgeelhaar/scriptsmith")
	m := &Metrics{}
	var err error

	if m.CommandCounter, err = meter.Int64Counter(
		"scriptsmith.command.invocations",
		metric.WithDescription("Total number of command invocations"),
		metric.WithUnit("{invocation}"),
	); err != nil {
		return nil, err
	}

	if m.CommandDuration, err = meter.Float64Histogram(
		"scriptsmith.command.duration",
		metric.WithDescription("Command execution duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.ProviderCallCounter, err = meter.Int64Counter(
		"scriptsmith.provider.calls",
		metric.WithDescription("Total number of completion service calls"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}

	if m.ProviderLatency, err = meter.Float64Histogram(
		"scriptsmith.provider.latency",
		metric.WithDescription("Completion service latency in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.ProviderErrorCounter, err = meter.Int64Counter(
		"scriptsmith.provider.errors",
		metric.WithDescription("Total number of completion service errors"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	if m.CycleCounter, err = meter.Int64Counter(
		"scriptsmith.session.cycles",
		metric.WithDescription("Generation cycles, including repairs"),
		metric.WithUnit("{cycle}"),
	); err != nil {
		return nil, err
	}

	if m.VerdictCounter, err = meter.Int64Counter(
		"scriptsmith.session.verdicts",
		metric.WithDescription("Check verdicts by status"),
		metric.WithUnit("{verdict}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// GetMetrics returns the initialized metrics instance.
// Returns empty metrics when telemetry is disabled.
func GetMetrics() *Metrics {
	meterMu.RLock()
	defer meterMu.RUnlock()

	if metrics != nil {
		return metrics
	}

	return &Metrics{}
}

// RecordCommandInvocation records a command invocation and its duration
func RecordCommandInvocation(ctx context.Context, commandName, status string, duration time.Duration) {
	m := GetMetrics()
	if m.CommandCounter == nil {
		return
	}

	m.CommandCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", commandName),
		attribute.String("status", status),
	))
	m.CommandDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("command", commandName),
	))
}

// RecordProviderCall records a completion service call and its latency
func RecordProviderCall(ctx context.Context, provider, operation, status string, duration time.Duration) {
	m := GetMetrics()
	if m.ProviderCallCounter == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	m.ProviderCallCounter.Add(ctx, 1, attrs)
	m.ProviderLatency.Record(ctx, duration.Seconds(), attrs)
}

// RecordProviderError records a completion service error
func RecordProviderError(ctx context.Context, provider, operation, errorCode string) {
	m := GetMetrics()
	if m.ProviderErrorCounter == nil {
		return
	}

	m.ProviderErrorCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.String("error_code", errorCode),
	))
}

// RecordCycle records the start of a generation cycle
func RecordCycle(ctx context.Context, dialect string, repair bool) {
	m := GetMetrics()
	if m.CycleCounter == nil {
		return
	}

	m.CycleCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("dialect", dialect),
		attribute.Bool("repair", repair),
	))
}

// RecordVerdict records a check verdict
func RecordVerdict(ctx context.Context, dialect, status string, issues int) {
	m := GetMetrics()
	if m.VerdictCounter == nil {
		return
	}

	m.VerdictCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("dialect", dialect),
		attribute.String("status", status),
		attribute.Int("issues", issues),
	))
}

// ShutdownMetrics gracefully shuts down the metrics provider
func ShutdownMetrics(ctx context.Context) error {
	meterMu.RLock()
	shutdown := globalMetricsShutdown
	meterMu.RUnlock()

	if shutdown != nil {
		return shutdown(ctx)
	}
	return nil
}

// ForceFlushMetrics forces all pending metrics to be exported
func ForceFlushMetrics(ctx context.Context) error {
	meterMu.RLock()
	provider := globalMeterProvider
	meterMu.RUnlock()

	if mp, ok := provider.(*sdkmetric.MeterProvider); ok {
		return mp.ForceFlush(ctx)
	}
	return nil
}

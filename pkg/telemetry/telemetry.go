package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Service name for telemetry
	serviceName = "graphc"

	// Metric names
	metricCompilations    = "compiler.compilations.total"
	metricCompileDuration = "compiler.compilation.duration"
	metricCompileSuccess  = "compiler.compilations.success.total"
	metricCompileFailure  = "compiler.compilations.failure.total"
	metricPhaseExecutions = "compiler.phase.executions.total"
	metricPhaseDuration   = "compiler.phase.duration"
	metricPhaseSuccess    = "compiler.phase.executions.success.total"
	metricPhaseFailure    = "compiler.phase.executions.failure.total"
	metricScheduledTasks  = "compiler.scheduled_tasks.total"
	metricIsolatedTasks   = "compiler.isolated_tasks.total"
)

// Provider manages OpenTelemetry setup and provides access to tracers and meters.
type Provider struct {
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider trace.TracerProvider
	meter          metric.Meter
	tracer         trace.Tracer

	// Metrics instruments
	compilations    metric.Int64Counter
	compileDuration metric.Float64Histogram
	compileSuccess  metric.Int64Counter
	compileFailure  metric.Int64Counter
	phaseExecutions metric.Int64Counter
	phaseDuration   metric.Float64Histogram
	phaseSuccess    metric.Int64Counter
	phaseFailure    metric.Int64Counter
	scheduledTasks  metric.Int64Counter
	isolatedTasks   metric.Int64Counter

	mu sync.RWMutex
}

// Config holds telemetry configuration
type Config struct {
	// ServiceName is the name of the service for telemetry
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Environment (e.g., "production", "staging", "development")
	Environment string

	// EnableTracing enables distributed tracing
	EnableTracing bool

	// EnableMetrics enables metrics collection
	EnableMetrics bool
}

// DefaultConfig returns default telemetry configuration
func DefaultConfig() Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    "development",
		EnableTracing:  true,
		EnableMetrics:  true,
	}
}

// NewProvider creates a new telemetry provider with Prometheus metrics exporter.
// It initializes OpenTelemetry with the given configuration and returns a provider
// that can be used to create tracers and record metrics.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	provider := &Provider{}

	// Create resource with service information
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Initialize metrics if enabled
	if config.EnableMetrics {
		if err := provider.initMetrics(res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	// Initialize tracing if enabled
	if config.EnableTracing {
		provider.initTracing()
	}

	return provider, nil
}

// initMetrics initializes the metrics provider with Prometheus exporter
func (p *Provider) initMetrics(res *resource.Resource) error {
	// Create Prometheus exporter
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	// Create meter provider with the exporter
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	// Set as global meter provider
	otel.SetMeterProvider(p.meterProvider)

	// Create meter
	p.meter = p.meterProvider.Meter(serviceName)

	// Create metric instruments
	if err := p.createMetricInstruments(); err != nil {
		return fmt.Errorf("failed to create metric instruments: %w", err)
	}

	return nil
}

// initTracing initializes the tracing provider
func (p *Provider) initTracing() {
	// For now, use the global tracer provider
	// In production, this should be configured with appropriate exporters (OTLP, Jaeger, etc.)
	p.tracerProvider = otel.GetTracerProvider()
	p.tracer = p.tracerProvider.Tracer(serviceName)
}

// createMetricInstruments creates all metric instruments
func (p *Provider) createMetricInstruments() error {
	var err error

	// Compilation metrics
	p.compilations, err = p.meter.Int64Counter(
		metricCompilations,
		metric.WithDescription("Total number of pipeline compilations"),
	)
	if err != nil {
		return err
	}

	p.compileDuration, err = p.meter.Float64Histogram(
		metricCompileDuration,
		metric.WithDescription("Compilation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.compileSuccess, err = p.meter.Int64Counter(
		metricCompileSuccess,
		metric.WithDescription("Total number of successful compilations"),
	)
	if err != nil {
		return err
	}

	p.compileFailure, err = p.meter.Int64Counter(
		metricCompileFailure,
		metric.WithDescription("Total number of failed compilations"),
	)
	if err != nil {
		return err
	}

	// Phase metrics
	p.phaseExecutions, err = p.meter.Int64Counter(
		metricPhaseExecutions,
		metric.WithDescription("Total number of compile phase executions"),
	)
	if err != nil {
		return err
	}

	p.phaseDuration, err = p.meter.Float64Histogram(
		metricPhaseDuration,
		metric.WithDescription("Compile phase duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.phaseSuccess, err = p.meter.Int64Counter(
		metricPhaseSuccess,
		metric.WithDescription("Total number of successful phase executions"),
	)
	if err != nil {
		return err
	}

	p.phaseFailure, err = p.meter.Int64Counter(
		metricPhaseFailure,
		metric.WithDescription("Total number of failed phase executions"),
	)
	if err != nil {
		return err
	}

	// Graph metrics
	p.scheduledTasks, err = p.meter.Int64Counter(
		metricScheduledTasks,
		metric.WithDescription("Total number of tasks placed into a workflow order"),
	)
	if err != nil {
		return err
	}

	p.isolatedTasks, err = p.meter.Int64Counter(
		metricIsolatedTasks,
		metric.WithDescription("Total number of tasks flagged as isolated"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Tracer returns the tracer for creating spans
func (p *Provider) Tracer() trace.Tracer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracer
}

// Meter returns the meter for recording metrics
func (p *Provider) Meter() metric.Meter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.meter
}

// RecordCompilation records metrics for a single pipeline compilation.
func (p *Provider) RecordCompilation(ctx context.Context, pipelineID string, duration time.Duration, success bool, taskCount int) {
	if p.meter == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("pipeline.id", pipelineID),
		attribute.Int("tasks.count", taskCount),
	}

	p.compilations.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.compileDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if success {
		p.compileSuccess.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		p.compileFailure.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordPhase records metrics for a single compile phase (build, merge,
// the binders, schedule, the isolated-node check).
func (p *Provider) RecordPhase(ctx context.Context, phase string, duration time.Duration, success bool) {
	if p.meter == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("phase.name", phase),
	}

	p.phaseExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.phaseDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if success {
		p.phaseSuccess.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		p.phaseFailure.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordSchedule records the outcome of the scheduler pass: how many tasks
// were placed into the workflow order and how many were flagged isolated.
func (p *Provider) RecordSchedule(ctx context.Context, pipelineID string, scheduled, isolated int) {
	if p.meter == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("pipeline.id", pipelineID),
	}

	p.scheduledTasks.Add(ctx, int64(scheduled), metric.WithAttributes(attrs...))
	p.isolatedTasks.Add(ctx, int64(isolated), metric.WithAttributes(attrs...))
}

// Shutdown gracefully shuts down the telemetry provider
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown meter provider: %w", err)
		}
	}

	return nil
}

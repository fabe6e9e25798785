package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pipeweave/graphc/pkg/observer"
)

// TelemetryObserver implements observer.Observer and records telemetry data
// for compile-phase events.
type TelemetryObserver struct {
	provider *Provider

	// Track the active span for the compilation and its phases
	compileSpan trace.Span
	phaseSpans  map[string]trace.Span

	// Track timing
	compileStartTime time.Time
	phaseStartTimes  map[string]time.Time
}

// NewTelemetryObserver creates a new telemetry observer
func NewTelemetryObserver(provider *Provider) *TelemetryObserver {
	return &TelemetryObserver{
		provider:        provider,
		phaseSpans:      make(map[string]trace.Span),
		phaseStartTimes: make(map[string]time.Time),
	}
}

// OnEvent handles compile events and records telemetry data
func (o *TelemetryObserver) OnEvent(ctx context.Context, event observer.Event) {
	switch event.Type {
	case observer.EventCompileStart:
		o.handleCompileStart(ctx, event)
	case observer.EventCompileEnd:
		o.handleCompileEnd(ctx, event)
	case observer.EventPhaseStart:
		o.handlePhaseStart(ctx, event)
	case observer.EventPhaseSuccess:
		o.handlePhaseSuccess(ctx, event)
	case observer.EventPhaseFailure:
		o.handlePhaseFailure(ctx, event)
	}
}

func (o *TelemetryObserver) handleCompileStart(ctx context.Context, event observer.Event) {
	// Start compilation span
	_, span := o.provider.Tracer().Start(ctx, "compiler.compile",
		trace.WithAttributes(
			attribute.String("pipeline.id", event.PipelineID),
			attribute.String("compilation.id", event.CompilationID),
		),
	)

	o.compileSpan = span
	o.compileStartTime = event.Timestamp
}

func (o *TelemetryObserver) handleCompileEnd(ctx context.Context, event observer.Event) {
	duration := time.Since(o.compileStartTime)

	taskCount := 0
	if val, ok := event.Metadata["task_count"]; ok {
		if count, ok := val.(int); ok {
			taskCount = count
		}
	}

	success := event.Status == observer.StatusSuccess
	o.provider.RecordCompilation(ctx, event.PipelineID, duration, success, taskCount)

	if o.compileSpan != nil {
		if event.Error != nil {
			o.compileSpan.RecordError(event.Error)
			o.compileSpan.SetStatus(codes.Error, event.Error.Error())
		} else {
			o.compileSpan.SetStatus(codes.Ok, "compilation completed successfully")
		}
		o.compileSpan.End()
	}
}

func (o *TelemetryObserver) handlePhaseStart(ctx context.Context, event observer.Event) {
	// Start phase span as child of the compilation span
	var spanCtx context.Context
	if o.compileSpan != nil {
		spanCtx = trace.ContextWithSpan(ctx, o.compileSpan)
	} else {
		spanCtx = ctx
	}

	_, span := o.provider.Tracer().Start(spanCtx, "compiler.phase",
		trace.WithAttributes(
			attribute.String("phase.name", event.Phase),
			attribute.String("compilation.id", event.CompilationID),
		),
	)

	o.phaseSpans[event.Phase] = span
	o.phaseStartTimes[event.Phase] = event.Timestamp
}

func (o *TelemetryObserver) handlePhaseSuccess(ctx context.Context, event observer.Event) {
	o.handlePhaseEnd(ctx, event, true)
}

func (o *TelemetryObserver) handlePhaseFailure(ctx context.Context, event observer.Event) {
	o.handlePhaseEnd(ctx, event, false)
}

func (o *TelemetryObserver) handlePhaseEnd(ctx context.Context, event observer.Event, success bool) {
	var duration time.Duration
	if startTime, ok := o.phaseStartTimes[event.Phase]; ok {
		duration = time.Since(startTime)
		delete(o.phaseStartTimes, event.Phase)
	}

	o.provider.RecordPhase(ctx, event.Phase, duration, success)

	if event.Phase == "schedule" {
		scheduled, _ := event.Metadata["scheduled_tasks"].(int)
		isolated, _ := event.Metadata["isolated_tasks"].(int)
		o.provider.RecordSchedule(ctx, event.PipelineID, scheduled, isolated)
	}

	if span, ok := o.phaseSpans[event.Phase]; ok {
		if event.Error != nil {
			span.RecordError(event.Error)
			span.SetStatus(codes.Error, event.Error.Error())
		} else {
			span.SetStatus(codes.Ok, "phase completed successfully")
		}
		span.End()
		delete(o.phaseSpans, event.Phase)
	}
}

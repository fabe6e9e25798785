// Package observer provides the Observer pattern implementation for compile
// phase monitoring. This allows library consumers to track and monitor a
// compilation's progress through Build, Merge, the binders, Schedule and
// the isolated-node check.
package observer

import (
	"context"
	"time"
)

// EventType represents the type of compile event.
type EventType string

const (
	// Compilation-level events
	EventCompileStart EventType = "compile_start"
	EventCompileEnd   EventType = "compile_end"

	// Phase-level events
	EventPhaseStart   EventType = "phase_start"
	EventPhaseEnd     EventType = "phase_end"
	EventPhaseSuccess EventType = "phase_success"
	EventPhaseFailure EventType = "phase_failure"
)

// ExecutionStatus represents the status of a phase or compilation.
type ExecutionStatus string

const (
	StatusStarted   ExecutionStatus = "started"
	StatusSuccess   ExecutionStatus = "success"
	StatusFailure   ExecutionStatus = "failure"
	StatusCompleted ExecutionStatus = "completed"
)

// Event represents a compile event with all relevant metadata.
type Event struct {
	// Event identification
	Type      EventType       `json:"type"`
	Status    ExecutionStatus `json:"status"`
	Timestamp time.Time       `json:"timestamp"`

	// Compilation context
	CompilationID string `json:"compilation_id"`
	PipelineID    string `json:"pipeline_id,omitempty"`

	// Phase-specific data (empty for compilation-level events)
	Phase string `json:"phase,omitempty"`

	// Timing information
	StartTime   time.Time     `json:"start_time,omitempty"`
	ElapsedTime time.Duration `json:"elapsed_time,omitempty"`

	// Execution results
	Result interface{} `json:"result,omitempty"`
	Error  error       `json:"error,omitempty"`

	// Additional metadata
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Observer defines the interface for compile-phase observers. Observers
// receive notifications about various stages of a compilation.
type Observer interface {
	// OnEvent is called when a compile event occurs.
	// The context can be used for cancellation and passing request-scoped values.
	OnEvent(ctx context.Context, event Event)
}

// Logger defines the interface for custom logging.
// This allows library consumers to integrate with their own logging systems.
type Logger interface {
	// Debug logs debug-level messages
	Debug(msg string, fields map[string]interface{})

	// Info logs info-level messages
	Info(msg string, fields map[string]interface{})

	// Warn logs warning-level messages
	Warn(msg string, fields map[string]interface{})

	// Error logs error-level messages
	Error(msg string, fields map[string]interface{})
}

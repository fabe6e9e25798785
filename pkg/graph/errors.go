package graph

import "errors"

// Sentinel errors for graph algorithms.
var (
	// Structure errors
	ErrEmptyGraph   = errors.New("graph is empty")
	ErrNodeNotFound = errors.New("node not found in graph")

	// Cycle detection errors
	ErrCycleInTaskGraph = errors.New("task graph contains a cycle")

	// Streaming errors
	ErrStreamingConsumerMissing  = errors.New("streaming task has no successor consumer task")
	ErrStreamingConsumerNotFound = errors.New("streaming consumer task not present in workflow")
)

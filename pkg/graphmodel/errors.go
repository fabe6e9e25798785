package graphmodel

import "errors"

// Sentinel errors for graph-model construction and invariant checking.
var (
	// Value-storage errors
	ErrNonDenseIterations = errors.New("values: iteration keys are not a dense 1..N range")
	ErrNoValuesForOption  = errors.New("values: no values stored for option")

	// Invariant errors
	ErrFileNodeWithoutParent   = errors.New("invariant violated: file node has no associated option node")
	ErrOptionFileCountMismatch = errors.New("invariant violated: option's file-node count does not match its extension count")
	ErrRemovedOptionHasLiveFiles = errors.New("invariant violated: option marked for removal still has live file nodes")
	ErrInvalidEdgeEndpoints    = errors.New("invariant violated: edge does not connect a task to an option or file node")

	// Node/edge construction errors
	ErrUnknownNodeKind = errors.New("unknown node kind")
	ErrDuplicateNodeID = errors.New("duplicate node ID")
	ErrNodeNotFound    = errors.New("node not found")
)

package evaluator

import "errors"

// Sentinel errors for the evaluate-commands binder.
var (
	ErrUnresolvedTarget            = errors.New("evaluate command's target argument could not be resolved to a graph node")
	ErrUnknownSource               = errors.New("evaluate command references an unknown source option")
	ErrIncompatibleIterationCounts = errors.New("evaluate command sources have incompatible iteration counts")
)

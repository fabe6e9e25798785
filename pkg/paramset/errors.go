package paramset

import "errors"

// Sentinel errors for parameter-set application.
var (
	ErrEmptyName                = errors.New("parameter set name is empty")
	ErrUnknownParameterSet      = errors.New("no parameter set registered under that name")
	ErrUnknownParameterSetID    = errors.New("parameter set entry references an unknown common node")
	ErrUnresolvedParameterTarget = errors.New("parameter set entry could not be resolved to a graph node")
	ErrNoTaskForTool            = errors.New("no task in the pipeline is bound to the tool")
	ErrAmbiguousToolTask        = errors.New("more than one task is bound to the tool; tool-mode parameter set is ambiguous")
	ErrInvalidArgumentForTool   = errors.New("argument is not declared on the tool")
	ErrNameConflictOnExport     = errors.New("parameter set name already exists")
)

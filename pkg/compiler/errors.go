package compiler

import "errors"

// Sentinel errors for the passes compiler.Compile drives directly (spec.md
// 4.6, 4.7): the per-phase packages carry their own sentinels for 4.1-4.5.
var (
	ErrOriginatingEdgeSourceIsStub    = errors.New("originating edge's source argument is a filename stub")
	ErrOriginatingEdgeTargetNotInput  = errors.New("originating edge's target argument is not an input")
	ErrOriginatingEdgeUnresolved      = errors.New("originating edge's source has no option node")
	ErrRequiredArgumentUnsatisfied    = errors.New("required argument has no value and no alternative")
)

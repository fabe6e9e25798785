// Package evaluator implements the evaluate-commands binder (spec.md 4.5):
// it renders a command template against other options' bound values, one
// rendering per iteration, and writes the result to the target option's
// values as a shell-eval string. The edges it adds from each source to the
// consuming task are provenance only; pkg/graph's TaskAdjacency ignores
// them because they carry neither IsInput nor IsOutput.
package evaluator

// Package logging provides structured logging for the graph compiler,
// built on log/slog.
//
// # Basic usage
//
//	logger := logging.New(logging.DefaultConfig())
//	logger.WithCompilationID(result.CompilationID).
//		WithPipelineID(pipelineName).
//		WithPhase("merge").
//		Info("common node resolved")
//
// Fields carried through a compilation: compilation_id (one per Compile
// call), pipeline_id, task_id and phase (the compile stage currently
// running: build, merge, schedule, and so on).
package logging

// Package paramset resolves a named parameter set against a merged graph.
// Pipeline-mode sets overlay a pipeline-level argument name, resolved
// through the pipeline's argument table and the merger's common-node map;
// tool-mode sets overlay an argument of a single tool's task directly,
// synthesizing the option (and file) node if the builder never had reason
// to create one.
package paramset

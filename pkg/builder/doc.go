// Package builder turns a pipeline definition plus its tool schemas into
// the disjoint union of per-task subgraphs the merger then collapses. Each
// task gets one task node; each of its required-or-referenced arguments
// gets one option node (and, for file arguments, one or more file nodes),
// wired to the task by a directional edge. The merger is the only package
// that may reach across tasks; the builder never creates an edge that
// spans two task subgraphs.
package builder

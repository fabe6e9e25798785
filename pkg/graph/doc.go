// Package graph provides the topological sort and traversal algorithms
// the scheduler drives. It holds no mutable graph state of its own (that
// lives in pkg/graphmodel); it only reads a *graphmodel.Graph and answers
// ordering and reachability questions about it.
//
// Edges never connect two task nodes directly (graphmodel.Edge rejects
// that combination); a task's dependency on another task is always
// expressed as producer-task -> file-or-option-node -> consumer-task.
// TopologicalSort collapses that two-hop path into a direct task
// adjacency before running Kahn's algorithm.
package graph

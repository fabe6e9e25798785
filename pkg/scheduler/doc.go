// Package scheduler turns the merged graph into an ordered task workflow:
// a topological sort reordered so streaming producers are immediately
// followed by their consumer, per-task dataset counts, an intermediate-file
// deletion plan, and the dependency/output lists downstream consumers need.
package scheduler

// Package ids provides tagged identifiers for graph nodes.
//
// The graph model has three node kinds (task, option, file) plus a
// transient placeholder kind used while the merger resolves common
// nodes. Each kind has its own ID shape: task nodes are identified by
// the pipeline-declared task name, option nodes by a monotonically
// allocated counter ("OPTION_<n>"), file nodes by their owning option's
// counter plus a suffix ("_FILE", "_FILE_2", "_1"), and placeholders by
// a separate counter ("CREATE_NODE_<k>"). Rather than encode the kind in
// a raw string and re-parse it at every call site, ID carries the kind
// and its components as typed fields; String renders the debug form.
package ids

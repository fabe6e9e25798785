package graphmodel

import "github.com/pipeweave/graphc/pkg/ids"

// Graph is the mutable node/edge store the builder, merger and binders
// operate on directly. Algorithms that don't need to mutate the graph
// (topological sort, streaming reorder, traversal queries) live in the
// sibling pkg/graph package, which depends on this one the same way the
// teacher's algorithmic graph package depends on its data-only types
// package.
type Graph struct {
	order []ids.ID
	nodes map[ids.ID]*Node
	edges []*Edge
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes: map[ids.ID]*Node{},
	}
}

// AddNode inserts a node, preserving first-insertion order for deterministic
// iteration. Re-adding an existing ID overwrites it in place without
// disturbing its position.
func (g *Graph) AddNode(n *Node) {
	if _, exists := g.nodes[n.ID]; !exists {
		g.order = append(g.order, n.ID)
	}
	g.nodes[n.ID] = n
}

// GetNode returns the node with the given ID, or nil.
func (g *Graph) GetNode(id ids.ID) *Node {
	return g.nodes[id]
}

// RemoveNode deletes a node and every edge touching it.
func (g *Graph) RemoveNode(id ids.ID) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	delete(g.nodes, id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
}

// AddEdge appends an edge. Callers should build edges via Graph.NewInputEdge
// / Graph.NewOutputEdge so endpoint-kind invariants are checked first.
func (g *Graph) AddEdge(e *Edge) {
	g.edges = append(g.edges, e)
}

// RemoveEdge deletes the first edge matching source, target and long-form
// argument (there is at most one such edge in a well-formed graph).
func (g *Graph) RemoveEdge(source, target ids.ID, longForm string) bool {
	for i, e := range g.edges {
		if e.Source == source && e.Target == target && e.LongFormArgument == longForm {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return true
		}
	}
	return false
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodesOfKind returns all nodes of the given kind, in insertion order.
func (g *Graph) NodesOfKind(kind Kind) []*Node {
	var out []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// EdgesFrom returns every edge whose Source is id.
func (g *Graph) EdgesFrom(id ids.ID) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns every edge whose Target is id.
func (g *Graph) EdgesTo(id ids.ID) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.Target == id {
			out = append(out, e)
		}
	}
	return out
}

// CheckInvariants checks the current graph contents: every file ID an
// option lists names a file node; a non-stub file option lists exactly one
// file; a removed option has no live file nodes; and every edge joins a
// task to a non-task node. It does not check that every file node has an
// owning option, the file count of filename-stub options, or iteration-key
// density (Values.Validate). Task-subgraph acyclicity is checked by
// pkg/graph's TopologicalSort, which requires algorithms this package
// deliberately does not carry.
func (g *Graph) CheckInvariants() error {
	for _, n := range g.Nodes() {
		if n.Kind != KindOption {
			continue
		}
		for _, fid := range n.Option.AssociatedFileNodes {
			file := g.GetNode(fid)
			if file == nil || file.Kind != KindFile {
				return ErrFileNodeWithoutParent
			}
		}
		if n.Option.IsFile && !n.Option.IsFilenameStub && len(n.Option.AssociatedFileNodes) != 1 {
			return ErrOptionFileCountMismatch
		}
		if n.Option.IsMarkedForRemoval {
			for _, fid := range n.Option.AssociatedFileNodes {
				file := g.GetNode(fid)
				if file != nil && !file.File.IsMarkedForRemoval {
					return ErrRemovedOptionHasLiveFiles
				}
			}
		}
	}
	for _, e := range g.edges {
		sn := g.GetNode(e.Source)
		tn := g.GetNode(e.Target)
		if sn == nil || tn == nil {
			return ErrInvalidEdgeEndpoints
		}
		if sn.Kind == KindTask && tn.Kind == KindTask {
			return ErrInvalidEdgeEndpoints
		}
		if sn.Kind != KindTask && tn.Kind != KindTask {
			return ErrInvalidEdgeEndpoints
		}
	}
	return nil
}

// Package graph provides the topological sort and traversal algorithms
// consumed by the scheduler.
package graph

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pipeweave/graphc/pkg/graphmodel"
	"github.com/pipeweave/graphc/pkg/ids"
)

// TaskAdjacency collapses the two-hop producer-task -> option-or-file ->
// consumer-task path into a flat task-ID adjacency list, the shape Kahn's
// algorithm needs. Edges never connect two task nodes directly.
func TaskAdjacency(g *graphmodel.Graph) map[string][]string {
	adjacency := map[string][]string{}
	for _, t := range g.NodesOfKind(graphmodel.KindTask) {
		adjacency[t.ID.Name] = nil
	}

	for _, node := range g.Nodes() {
		if node.Kind == graphmodel.KindTask {
			continue
		}
		var producer ids.ID
		hasProducer := false
		for _, e := range g.EdgesTo(node.ID) {
			if e.IsOutput {
				producer = e.Source
				hasProducer = true
				break
			}
		}
		if !hasProducer {
			continue
		}
		for _, e := range g.EdgesFrom(node.ID) {
			if e.IsInput {
				adjacency[producer.Name] = append(adjacency[producer.Name], e.Target.Name)
			}
		}
	}
	return adjacency
}

// TopologicalSort orders task nodes using Kahn's algorithm over the
// adjacency TaskAdjacency derives. Orphan (zero in-degree) nodes, and
// newly-ready nodes discovered during processing, are ordered by a
// Unicode collation key rather than raw byte comparison, so the tie-break
// is a documented, locale-independent rule rather than an accident of Go's
// string comparison.
func TopologicalSort(g *graphmodel.Graph) ([]string, error) {
	adjacency := TaskAdjacency(g)
	numTasks := len(adjacency)
	if numTasks == 0 {
		return []string{}, nil
	}

	inDegree := make(map[string]int, numTasks)
	for name := range adjacency {
		inDegree[name] = 0
	}
	for _, targets := range adjacency {
		for _, target := range targets {
			inDegree[target]++
		}
	}

	var orphans []string
	for name, degree := range inDegree {
		if degree == 0 {
			orphans = append(orphans, name)
		}
	}
	sortDeterministic(orphans)

	queue := make([]string, numTasks)
	queueEnd := len(orphans)
	copy(queue, orphans)
	queueStart := 0

	order := make([]string, 0, numTasks)
	for queueStart < queueEnd {
		current := queue[queueStart]
		queueStart++
		order = append(order, current)

		var ready []string
		for _, n := range adjacency[current] {
			inDegree[n]--
			if inDegree[n] == 0 {
				ready = append(ready, n)
			}
		}
		sortDeterministic(ready)
		for _, n := range ready {
			queue[queueEnd] = n
			queueEnd++
		}
	}

	if len(order) != numTasks {
		return nil, ErrCycleInTaskGraph
	}
	return order, nil
}

// sortDeterministic orders task names with a Unicode collation key so two
// compiler builds on different platforms produce byte-identical workflows
// even when task names contain non-ASCII characters.
func sortDeterministic(names []string) {
	if len(names) < 2 {
		return
	}
	collate.New(language.Und).SortStrings(names)
}

// SortDeterministic orders arbitrary strings with the same collation key
// used internally for tie-breaking, for callers outside this package that
// need the same byte-identical ordering guarantee (builder's task
// iteration order, the compiler's required-argument check).
func SortDeterministic(names []string) {
	sortDeterministic(names)
}

// DetectCycles reports whether the task graph has a cycle.
func DetectCycles(g *graphmodel.Graph) error {
	_, err := TopologicalSort(g)
	return err
}

// GetTerminalNodes returns the IDs of file nodes that have no successor
// task: candidates for pipeline-level final products.
func GetTerminalNodes(g *graphmodel.Graph) []ids.ID {
	var out []ids.ID
	for _, n := range g.NodesOfKind(graphmodel.KindFile) {
		hasConsumer := false
		for _, e := range g.EdgesFrom(n.ID) {
			if e.IsInput {
				hasConsumer = true
				break
			}
		}
		if !hasConsumer {
			out = append(out, n.ID)
		}
	}
	return out
}

// GetSourceNodes returns the IDs of file nodes with no predecessor task:
// candidates for pipeline-level inputs.
func GetSourceNodes(g *graphmodel.Graph) []ids.ID {
	var out []ids.ID
	for _, n := range g.NodesOfKind(graphmodel.KindFile) {
		hasProducer := false
		for _, e := range g.EdgesTo(n.ID) {
			if e.IsOutput {
				hasProducer = true
				break
			}
		}
		if !hasProducer {
			out = append(out, n.ID)
		}
	}
	return out
}

// ReorderForStreaming rewrites workflow order so that, for every task that
// outputs to a stream, its unique streaming-consumer task occupies the
// slot immediately following it. It repeatedly cuts the consumer out of
// wherever it currently sits and reinserts it directly after its producer;
// residual tasks shift right and trailing tasks keep their relative order.
// Stable with respect to tasks not connected by a streaming edge.
func ReorderForStreaming(workflow []string, streamingConsumer map[string]string) ([]string, error) {
	order := append([]string(nil), workflow...)

	producers := make([]string, 0, len(streamingConsumer))
	for producer := range streamingConsumer {
		producers = append(producers, producer)
	}
	sortDeterministic(producers)

	for _, producer := range producers {
		consumer := streamingConsumer[producer]
		for {
			pIdx := indexOf(order, producer)
			if pIdx == -1 {
				break
			}
			cIdx := indexOf(order, consumer)
			if cIdx == -1 {
				return nil, ErrStreamingConsumerNotFound
			}
			if cIdx == pIdx+1 {
				break
			}
			order = moveAfter(order, cIdx, pIdx)
		}
	}
	return order, nil
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// moveAfter removes the element at cIdx and reinserts it immediately after
// the (possibly shifted) position of the element originally at pIdx.
func moveAfter(order []string, cIdx, pIdx int) []string {
	elem := order[cIdx]

	without := make([]string, 0, len(order)-1)
	without = append(without, order[:cIdx]...)
	without = append(without, order[cIdx+1:]...)

	producerIdx := pIdx
	if cIdx < pIdx {
		producerIdx--
	}
	insertAt := producerIdx + 1

	out := make([]string, 0, len(order))
	out = append(out, without[:insertAt]...)
	out = append(out, elem)
	out = append(out, without[insertAt:]...)
	return out
}

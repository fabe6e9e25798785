package scheduler

import (
	"fmt"

	"github.com/pipeweave/graphc/pkg/graph"
	"github.com/pipeweave/graphc/pkg/graphmodel"
	"github.com/pipeweave/graphc/pkg/ids"
	"github.com/pipeweave/graphc/pkg/schema"
)

// Result is everything the scheduler produces for downstream consumers:
// the ordered workflow, the deletion plan, and dependency/output lists at
// both the per-task and graph level (spec.md §6 "Output").
type Result struct {
	Workflow []string

	// Deletions maps task name -> iteration -> the filenames to delete
	// once that task has run.
	Deletions map[string]map[int][]string

	Dependencies map[string][]string
	Outputs      map[string][]string

	GraphDependencies []string
	GraphOutputs      []string
}

// Schedule runs the full scheduler pipeline over an already-merged graph:
// topological sort, streaming-aware reorder, dataset-count computation,
// intermediate-file deletion planning, and dependency/output extraction.
func Schedule(g *graphmodel.Graph, pipeline schema.PipelineSchema, tools *schema.Registry) (*Result, error) {
	order, err := graph.TopologicalSort(g)
	if err != nil {
		return nil, err
	}

	streamingConsumer, err := identifyStreaming(g, pipeline, tools, order)
	if err != nil {
		return nil, err
	}

	order, err = graph.ReorderForStreaming(order, streamingConsumer)
	if err != nil {
		return nil, err
	}

	computeDatasetCounts(g, order)

	deletions, err := planDeletions(g, order)
	if err != nil {
		return nil, err
	}

	deps, outs := computeTaskDependenciesOutputs(g, order)
	graphDeps, graphOuts := computeGraphLevel(g, deletions)

	return &Result{
		Workflow:          order,
		Deletions:         deletions,
		Dependencies:      deps,
		Outputs:           outs,
		GraphDependencies: graphDeps,
		GraphOutputs:      graphOuts,
	}, nil
}

// identifyStreaming walks every outputToStream task's output file nodes
// for the one whose bound tool argument declares outputStream, marks it
// (and its incident producer/consumer edges) isStreaming, applies the
// ifOutputIsStream=="do not include" command-line suppression, and
// returns the producer->consumer task map the reorder step needs.
func identifyStreaming(g *graphmodel.Graph, pipeline schema.PipelineSchema, tools *schema.Registry, order []string) (map[string]string, error) {
	consumers := map[string]string{}

	for _, taskName := range order {
		taskID := ids.Task(taskName)
		tnode := g.GetNode(taskID)
		if tnode == nil || tnode.Kind != graphmodel.KindTask || !tnode.Task.OutputToStream {
			continue
		}

		toolName, err := pipeline.ToolFor(taskName)
		if err != nil {
			return nil, err
		}
		tool, err := tools.Get(toolName)
		if err != nil {
			return nil, err
		}

		var streamFileID ids.ID
		var streamArg schema.Argument
		found := false
		for _, e := range g.EdgesFrom(taskID) {
			if !e.IsOutput {
				continue
			}
			target := g.GetNode(e.Target)
			if target == nil || target.Kind != graphmodel.KindFile {
				continue
			}
			arg, err := tool.Attribute(e.LongFormArgument)
			if err != nil || !arg.OutputStream {
				continue
			}
			streamFileID, streamArg, found = e.Target, arg, true
			break
		}
		if !found {
			continue
		}

		fileNode := g.GetNode(streamFileID)
		fileNode.File.IsStreaming = true
		suppress := graphmodel.StreamPolicy(streamArg.IfOutputIsStream) == graphmodel.StreamDoNotInclude

		for _, e := range g.EdgesFrom(taskID) {
			if e.LongFormArgument != streamArg.LongForm {
				continue
			}
			e.IsStreaming = true
			if suppress {
				e.IncludeOnCommandLine = false
			}
		}

		var consumerTask string
		for _, e := range g.EdgesFrom(streamFileID) {
			if e.IsInput {
				consumerTask = e.Target.Name
				e.IsStreaming = true
			}
		}
		if consumerTask == "" {
			continue
		}
		for _, e := range g.Edges() {
			if e.IsInput && e.LongFormArgument == streamArg.LongForm && e.Target.Name == consumerTask {
				e.IsStreaming = true
			}
		}
		consumers[taskName] = consumerTask
	}

	return consumers, nil
}

// computeDatasetCounts implements the scheduler's dataset-count rule for
// every task: the max iteration count across predecessor option nodes,
// collapsed to 1 when the task is greedy over a multi-iteration input file
// and has no multi-iteration non-file option.
func computeDatasetCounts(g *graphmodel.Graph, order []string) {
	for _, taskName := range order {
		taskID := ids.Task(taskName)
		tnode := g.GetNode(taskID)
		if tnode == nil {
			continue
		}

		maxIter := 0
		greedyFileMultiIter := false
		nonFileMultiIter := false

		for _, e := range g.EdgesTo(taskID) {
			if !e.IsInput {
				continue
			}
			src := g.GetNode(e.Source)
			if src == nil || src.Kind != graphmodel.KindOption {
				continue
			}
			n := src.Option.Values.IterationCount()
			if n > maxIter {
				maxIter = n
			}
			if e.IsGreedy && src.Option.IsFile && n > 1 {
				greedyFileMultiIter = true
			}
			if !src.Option.IsFile && n > 1 {
				nonFileMultiIter = true
			}
		}
		if maxIter == 0 {
			maxIter = 1
		}

		if greedyFileMultiIter && !nonFileMultiIter {
			tnode.Task.NumberOfDataSets = 1
		} else {
			tnode.Task.NumberOfDataSets = maxIter
		}
	}
}

// planDeletions schedules every deletable intermediate file node (producer
// task, at least one consumer task, not streaming, owning option's
// deleteFiles set) for removal at the latest of its consumers in workflow
// order, grouped by (task, iteration), and fails on filename collisions.
func planDeletions(g *graphmodel.Graph, order []string) (map[string]map[int][]string, error) {
	position := make(map[string]int, len(order))
	for i, t := range order {
		position[t] = i
	}

	deletions := map[string]map[int][]string{}
	seen := map[string]bool{}

	for _, n := range g.NodesOfKind(graphmodel.KindFile) {
		if n.File.IsStreaming {
			continue
		}
		owner := findOwningOption(g, n.ID)
		if owner == nil || !owner.Option.DeleteFiles {
			continue
		}

		hasPredecessorTask := false
		for _, e := range g.EdgesTo(n.ID) {
			if e.IsOutput {
				hasPredecessorTask = true
			}
		}
		var successors []string
		for _, e := range g.EdgesFrom(n.ID) {
			if e.IsInput {
				successors = append(successors, e.Target.Name)
			}
		}
		if !hasPredecessorTask || len(successors) == 0 {
			continue
		}

		latest := successors[0]
		for _, s := range successors[1:] {
			if position[s] > position[latest] {
				latest = s
			}
		}

		iterations := n.File.Values.Iterations()
		if len(iterations) == 0 {
			iterations = []int{1}
		}
		for _, it := range iterations {
			for _, fname := range n.File.Values.At(it) {
				if seen[fname] {
					return nil, fmt.Errorf("%w: %s", ErrFilenameCollision, fname)
				}
				seen[fname] = true
				if deletions[latest] == nil {
					deletions[latest] = map[int][]string{}
				}
				deletions[latest][it] = append(deletions[latest][it], fname)
			}
		}
	}

	return deletions, nil
}

func findOwningOption(g *graphmodel.Graph, fileID ids.ID) *graphmodel.Node {
	for _, n := range g.NodesOfKind(graphmodel.KindOption) {
		for _, fid := range n.Option.AssociatedFileNodes {
			if fid == fileID {
				return n
			}
		}
	}
	return nil
}

func flattenValues(v graphmodel.Values) []string {
	var out []string
	for _, it := range v.Iterations() {
		out = append(out, v[it]...)
	}
	return out
}

// computeTaskDependenciesOutputs implements spec.md §4.3's per-task
// dependency/output lists: predecessor file values (skipping streams) and
// successor file values (skipping streams and files slated for deletion).
func computeTaskDependenciesOutputs(g *graphmodel.Graph, order []string) (map[string][]string, map[string][]string) {
	deps := map[string][]string{}
	outs := map[string][]string{}

	for _, taskName := range order {
		taskID := ids.Task(taskName)

		for _, e := range g.EdgesTo(taskID) {
			if !e.IsInput {
				continue
			}
			n := g.GetNode(e.Source)
			if n == nil || n.Kind != graphmodel.KindFile || n.File.IsStreaming {
				continue
			}
			deps[taskName] = append(deps[taskName], flattenValues(n.File.Values)...)
		}

		for _, e := range g.EdgesFrom(taskID) {
			if !e.IsOutput {
				continue
			}
			n := g.GetNode(e.Target)
			if n == nil || n.Kind != graphmodel.KindFile || n.File.IsStreaming {
				continue
			}
			owner := findOwningOption(g, n.ID)
			if owner != nil && owner.Option.DeleteFiles {
				continue
			}
			outs[taskName] = append(outs[taskName], flattenValues(n.File.Values)...)
		}
	}

	return deps, outs
}

// computeGraphLevel implements the pipeline-level dependency/output lists:
// values of source file nodes (no predecessor, pipeline inputs) and of
// terminal file nodes (no successor, final products) minus anything
// slated for deletion.
func computeGraphLevel(g *graphmodel.Graph, deletions map[string]map[int][]string) ([]string, []string) {
	deletedNames := map[string]bool{}
	for _, byIter := range deletions {
		for _, names := range byIter {
			for _, n := range names {
				deletedNames[n] = true
			}
		}
	}

	var deps []string
	for _, id := range graph.GetSourceNodes(g) {
		if n := g.GetNode(id); n != nil {
			deps = append(deps, flattenValues(n.File.Values)...)
		}
	}

	var outs []string
	for _, id := range graph.GetTerminalNodes(g) {
		n := g.GetNode(id)
		if n == nil {
			continue
		}
		values := flattenValues(n.File.Values)
		kept := values[:0]
		for _, v := range values {
			if !deletedNames[v] {
				kept = append(kept, v)
			}
		}
		outs = append(outs, kept...)
	}

	return deps, outs
}

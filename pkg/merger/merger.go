package merger

import (
	"fmt"

	"github.com/pipeweave/graphc/pkg/builder"
	"github.com/pipeweave/graphc/pkg/graphmodel"
	"github.com/pipeweave/graphc/pkg/ids"
	"github.com/pipeweave/graphc/pkg/schema"
)

// Merge collapses the builder's disjoint per-task subgraphs into one graph
// by applying every common-node entry of the pipeline (phases M1-M7), then
// purges the nodes the merge marked for removal. It returns the
// common-node-ID -> surviving-option-node-ID map the parameter-set binder
// needs to resolve pipeline-mode arguments.
func Merge(g *graphmodel.Graph, pipeline schema.PipelineSchema, tools *schema.Registry, alloc *ids.Allocator) (map[string]ids.ID, error) {
	nodeIDs := map[string]ids.ID{}

	for _, cn := range pipeline.Nodes {
		if len(cn.Tasks) == 0 {
			continue
		}
		if len(cn.Tasks) == 1 {
			pair := cn.Tasks[0]
			if id, ok := findOption(g, pair.Task, pair.Argument); ok {
				nodeIDs[cn.ID] = id
			}
			continue
		}

		targetID, winnerIdx, err := resolveTarget(g, pipeline, tools, cn, alloc)
		if err != nil {
			return nil, fmt.Errorf("common node %q: %w", cn.ID, err)
		}
		nodeIDs[cn.ID] = targetID
		target := g.GetNode(targetID)

		for i, pair := range cn.Tasks {
			if i == winnerIdx {
				continue
			}
			if err := mergePair(g, pipeline, tools, cn, targetID, target, pair); err != nil {
				return nil, fmt.Errorf("common node %q: %w", cn.ID, err)
			}
		}

		if cn.DeleteFiles {
			target.Option.DeleteFiles = true
		}
	}

	purge(g)

	if err := checkEdges(g, pipeline, tools, nodeIDs); err != nil {
		return nil, err
	}

	applyStreamTargets(g, pipeline)
	applyGreedyMarking(g, pipeline)

	return nodeIDs, nil
}

// FindOption is the exported form of findOption, for the parameter-set and
// evaluate-command binders, which both need to resolve a bare (task,
// argument) pair to its current option node outside of a common-node merge.
func FindOption(g *graphmodel.Graph, task, argument string) (ids.ID, bool) {
	return findOption(g, task, argument)
}

// findOption locates the option node currently wired to (task, argument),
// scanning the option-layer edges the builder (or a prior merge pass)
// installed. Returns false if no such option node exists yet.
func findOption(g *graphmodel.Graph, task, argument string) (ids.ID, bool) {
	taskID := ids.Task(task)
	for _, e := range g.EdgesFrom(taskID) {
		if e.LongFormArgument != argument {
			continue
		}
		if n := g.GetNode(e.Target); n != nil && n.Kind == graphmodel.KindOption {
			return e.Target, true
		}
	}
	for _, e := range g.EdgesTo(taskID) {
		if e.LongFormArgument != argument {
			continue
		}
		if n := g.GetNode(e.Source); n != nil && n.Kind == graphmodel.KindOption {
			return e.Source, true
		}
	}
	return ids.ID{}, false
}

func toolForTask(pipeline schema.PipelineSchema, tools *schema.Registry, task string) (schema.ToolSchema, error) {
	toolName, err := pipeline.ToolFor(task)
	if err != nil {
		return schema.ToolSchema{}, err
	}
	return tools.Get(toolName)
}

// resolveTarget implements phase M1's selection rule plus phase M2's
// placeholder materialisation. It returns the surviving option-node ID and,
// when an existing node won outright (no materialisation needed), the
// index of its pair within cn.Tasks so the caller can skip rewiring it
// against itself; -1 when a fresh node was materialised.
func resolveTarget(g *graphmodel.Graph, pipeline schema.PipelineSchema, tools *schema.Registry, cn schema.CommonNode, alloc *ids.Allocator) (ids.ID, int, error) {
	for i, pair := range cn.Tasks {
		if _, overridden := cn.LinkedExtensionFor(pair.Task, pair.Argument); overridden {
			continue
		}
		if id, ok := findOption(g, pair.Task, pair.Argument); ok {
			return id, i, nil
		}
	}

	first := cn.Tasks[0]
	tool, err := toolForTask(pipeline, tools, first.Task)
	if err != nil {
		return ids.ID{}, -1, err
	}
	arg, err := tool.Attribute(first.Argument)
	if err != nil {
		return ids.ID{}, -1, fmt.Errorf("%w: %s/%s", ErrMissingOptionNode, first.Task, first.Argument)
	}

	alloc.NextPlaceholder()
	realID := alloc.NextOption()
	node := builder.NewOption(realID, arg)
	g.AddNode(node)
	if arg.IsFile() {
		for _, f := range builder.NewFileNodes(realID, arg) {
			g.AddNode(f)
			node.Option.AssociatedFileNodes = append(node.Option.AssociatedFileNodes, f.ID)
		}
	}
	return realID, -1, nil
}

// mergePair implements phases M3 (option-edge rewiring) and M4 (file-node
// rewiring) for a single non-winning (task, argument) pair of a common
// node, then marks its pre-existing option/file nodes for removal.
func mergePair(g *graphmodel.Graph, pipeline schema.PipelineSchema, tools *schema.Registry, cn schema.CommonNode, targetID ids.ID, target *graphmodel.Node, pair schema.TaskArgument) error {
	taskID := ids.Task(pair.Task)
	tool, err := toolForTask(pipeline, tools, pair.Task)
	if err != nil {
		return err
	}
	arg, err := tool.Attribute(pair.Argument)
	if err != nil {
		return fmt.Errorf("%w: %s/%s", ErrMissingOptionNode, pair.Task, pair.Argument)
	}

	if err := ensureOptionEdge(g, targetID, taskID, arg); err != nil {
		return err
	}

	existingID, exists := findOption(g, pair.Task, pair.Argument)
	if exists && existingID == targetID {
		return nil
	}

	if target.Option.IsFile && arg.IsFile() {
		if exists {
			existingNode := g.GetNode(existingID)
			if err := rewireFiles(g, cn, pair, arg, targetID, target, existingNode, taskID); err != nil {
				return err
			}
		} else if err := wireAllTargetFiles(g, target, taskID, arg); err != nil {
			return err
		}
	}

	if exists {
		existingNode := g.GetNode(existingID)
		existingNode.MarkForRemoval()
		for _, fid := range existingNode.Option.AssociatedFileNodes {
			if fn := g.GetNode(fid); fn != nil {
				fn.MarkForRemoval()
			}
		}
	}
	return nil
}

// ensureOptionEdge installs the option-layer edge target<->task for arg, if
// one doesn't already exist. The "read json file" argument always reads as
// an input regardless of the tool schema's declared direction, per spec.md
// 4.2 phase M3's dedicated JSON-input edge.
func ensureOptionEdge(g *graphmodel.Graph, target, task ids.ID, arg schema.Argument) error {
	for _, e := range g.EdgesFrom(target) {
		if e.Target == task && e.LongFormArgument == arg.LongForm {
			return nil
		}
	}
	for _, e := range g.EdgesTo(target) {
		if e.Source == task && e.LongFormArgument == arg.LongForm {
			return nil
		}
	}

	isOutput := arg.IsOutput
	if arg.LongForm == "read json file" {
		isOutput = false
	}
	if isOutput {
		edge, err := g.NewOutputEdge(task, target, arg.LongForm, arg.ShortForm)
		if err != nil {
			return err
		}
		edge.IfOutputIsStream = builder.StreamPolicyOf(arg.IfOutputIsStream)
		g.AddEdge(edge)
		return nil
	}
	edge, err := g.NewInputEdge(target, task, arg.LongForm, arg.ShortForm)
	if err != nil {
		return err
	}
	g.AddEdge(edge)
	return nil
}

// wireFileEdge installs a single file<->task edge carrying arg's
// long/short form, tagged with isFilenameStub to reflect the merged
// option's shape rather than this particular pair's own tool schema.
func wireFileEdge(g *graphmodel.Graph, taskID, fileID ids.ID, arg schema.Argument, isFilenameStub bool) error {
	if arg.IsInput {
		e, err := g.NewInputEdge(fileID, taskID, arg.LongForm, arg.ShortForm)
		if err != nil {
			return err
		}
		e.IsFilenameStub = isFilenameStub
		g.AddEdge(e)
	}
	if arg.IsOutput {
		e, err := g.NewOutputEdge(taskID, fileID, arg.LongForm, arg.ShortForm)
		if err != nil {
			return err
		}
		e.IsFilenameStub = isFilenameStub
		e.IfOutputIsStream = builder.StreamPolicyOf(arg.IfOutputIsStream)
		g.AddEdge(e)
	}
	return nil
}

func wireAllTargetFiles(g *graphmodel.Graph, target *graphmodel.Node, taskID ids.ID, arg schema.Argument) error {
	for _, fid := range target.Option.AssociatedFileNodes {
		if err := wireFileEdge(g, taskID, fid, arg, target.Option.IsFilenameStub); err != nil {
			return err
		}
	}
	return nil
}

func findFileByExtension(g *graphmodel.Graph, option *graphmodel.Node, ext string) (ids.ID, bool) {
	for _, fid := range option.Option.AssociatedFileNodes {
		if fn := g.GetNode(fid); fn != nil && fn.File.AllowedExtension == ext {
			return fid, true
		}
	}
	return ids.ID{}, false
}

// rewireFiles implements the phase M4 policy table for a merged option
// (target) absorbing one removed pair's option (existing).
func rewireFiles(g *graphmodel.Graph, cn schema.CommonNode, pair schema.TaskArgument, arg schema.Argument, targetID ids.ID, target, existing *graphmodel.Node, taskID ids.ID) error {
	targetIsStub := target.Option.IsFilenameStub
	existingIsStub := existing.Option.IsFilenameStub

	switch {
	case !targetIsStub && !existingIsStub:
		if len(target.Option.AssociatedFileNodes) != 1 {
			return ErrStructuralFileCount
		}
		return wireFileEdge(g, taskID, target.Option.AssociatedFileNodes[0], arg, false)

	case targetIsStub && !existingIsStub:
		ext, ok := cn.LinkedExtensionFor(pair.Task, pair.Argument)
		if !ok {
			if len(target.Option.AssociatedFileNodes) == 1 {
				return wireFileEdge(g, taskID, target.Option.AssociatedFileNodes[0], arg, true)
			}
			return fmt.Errorf("%w: %s/%s has no linked extension for a stub merge target", ErrNoMatchingFileSibling, pair.Task, pair.Argument)
		}
		fileID, found := findFileByExtension(g, target, ext)
		if !found {
			return fmt.Errorf("%w: %s/%s wants extension %s", ErrNoMatchingFileSibling, pair.Task, pair.Argument, ext)
		}
		return wireFileEdge(g, taskID, fileID, arg, true)

	case !targetIsStub && existingIsStub:
		return renameToStubAndWire(g, cn, pair, arg, targetID, target, existing, taskID)

	default: // both stub
		return wireAllTargetFiles(g, target, taskID, arg)
	}
}

// renameToStubAndWire implements the "merged=no, removed=yes" M4 row: the
// target's sole file node is renamed to "<id>_1" and takes the removed
// stub's first extension, siblings "<id>_FILE_2.."<id>_FILE_N" are created
// for the rest, and every file is edged to the task whose own argument was
// the stub. Edges the old file node carried (from whichever task(s) the
// non-stub target was already wired to) are preserved under the new ID,
// per DESIGN.md's sibling-inclusion decision.
func renameToStubAndWire(g *graphmodel.Graph, cn schema.CommonNode, pair schema.TaskArgument, arg schema.Argument, targetID ids.ID, target, existing *graphmodel.Node, taskID ids.ID) error {
	if len(target.Option.AssociatedFileNodes) != 1 {
		return ErrStructuralFileCount
	}
	oldID := target.Option.AssociatedFileNodes[0]
	oldNode := g.GetNode(oldID)
	if oldNode == nil {
		return ErrStructuralFileCount
	}

	var extensions []string
	for _, fid := range existing.Option.AssociatedFileNodes {
		if fn := g.GetNode(fid); fn != nil {
			extensions = append(extensions, fn.File.AllowedExtension)
		}
	}
	if len(extensions) == 0 {
		return fmt.Errorf("%w: removed stub option has no file nodes to expand from", ErrStructuralFileCount)
	}

	var capturedFrom, capturedTo []graphmodel.Edge
	for _, e := range g.EdgesFrom(oldID) {
		capturedFrom = append(capturedFrom, *e)
	}
	for _, e := range g.EdgesTo(oldID) {
		capturedTo = append(capturedTo, *e)
	}
	g.RemoveNode(oldID)

	newID := ids.File(targetID.Counter, "_1")
	renamed := graphmodel.NewFileNode(newID)
	renamed.File.Description = oldNode.File.Description
	renamed.File.AllowMultipleValues = oldNode.File.AllowMultipleValues
	renamed.File.AllowedExtension = extensions[0]
	renamed.File.Values = oldNode.File.Values
	renamed.File.IsStreaming = oldNode.File.IsStreaming
	g.AddNode(renamed)

	for _, e := range capturedFrom {
		e.Source = newID
		g.AddEdge(&e)
	}
	for _, e := range capturedTo {
		e.Target = newID
		g.AddEdge(&e)
	}

	target.Option.AssociatedFileNodes = []ids.ID{newID}
	for i, ext := range extensions[1:] {
		suffix := fmt.Sprintf("_FILE_%d", i+2)
		sibID := ids.File(targetID.Counter, suffix)
		sib := graphmodel.NewFileNode(sibID)
		sib.File.Description = oldNode.File.Description
		sib.File.AllowMultipleValues = oldNode.File.AllowMultipleValues
		sib.File.AllowedExtension = ext
		g.AddNode(sib)
		target.Option.AssociatedFileNodes = append(target.Option.AssociatedFileNodes, sibID)
	}
	target.Option.IsFilenameStub = true

	return wireAllTargetFiles(g, target, taskID, arg)
}

// purge removes every option and file node marked for removal, which also
// drops every edge touching them (graphmodel.Graph.RemoveNode).
func purge(g *graphmodel.Graph) {
	var toRemove []ids.ID
	for _, n := range g.Nodes() {
		if n.Kind == graphmodel.KindOption || n.Kind == graphmodel.KindFile {
			if n.IsMarkedForRemoval() {
				toRemove = append(toRemove, n.ID)
			}
		}
	}
	for _, id := range toRemove {
		g.RemoveNode(id)
	}
}

// checkEdges implements phase M5: every (task, argument) a common node's
// linkedExtension table names must be wired to the merged option's file
// node whose sole allowed extension matches. If a rename (phase M4's
// "merged=no, removed=yes" row) left a mismatched edge, it is corrected
// here.
func checkEdges(g *graphmodel.Graph, pipeline schema.PipelineSchema, tools *schema.Registry, nodeIDs map[string]ids.ID) error {
	for _, cn := range pipeline.Nodes {
		if len(cn.LinkedExtension) == 0 {
			continue
		}
		targetID, ok := nodeIDs[cn.ID]
		if !ok {
			continue
		}
		target := g.GetNode(targetID)
		if target == nil || target.Kind != graphmodel.KindOption {
			continue
		}

		for task, byArg := range cn.LinkedExtension {
			for argument, ext := range byArg {
				taskID := ids.Task(task)
				correctID, found := findFileByExtension(g, target, ext)
				if !found {
					return fmt.Errorf("%w: %s/%s wants extension %s", ErrNoMatchingFileSibling, task, argument, ext)
				}

				var currentID ids.ID
				haveCurrent := false
				for _, fid := range target.Option.AssociatedFileNodes {
					for _, e := range g.EdgesFrom(fid) {
						if e.Target == taskID && e.LongFormArgument == argument {
							currentID, haveCurrent = fid, true
						}
					}
					for _, e := range g.EdgesTo(fid) {
						if e.Source == taskID && e.LongFormArgument == argument {
							currentID, haveCurrent = fid, true
						}
					}
				}
				if !haveCurrent || currentID == correctID {
					continue
				}

				g.RemoveEdge(currentID, taskID, argument)
				g.RemoveEdge(taskID, currentID, argument)

				tool, err := toolForTask(pipeline, tools, task)
				if err != nil {
					return err
				}
				arg, err := tool.Attribute(argument)
				if err != nil {
					return fmt.Errorf("%w: %s/%s", ErrMissingOptionNode, task, argument)
				}
				if err := wireFileEdge(g, taskID, correctID, arg, target.Option.IsFilenameStub); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// applyStreamTargets implements phase M6's streaming annotation half: every
// task the pipeline declares in tasksOutputtingToStream gets
// outputToStream=true. (The deleteFiles half runs inline above, per common
// node, since it needs each node's own DeleteFiles flag at merge time.)
func applyStreamTargets(g *graphmodel.Graph, pipeline schema.PipelineSchema) {
	for _, taskName := range pipeline.TasksOutputtingToStream {
		if n := g.GetNode(ids.Task(taskName)); n != nil && n.Kind == graphmodel.KindTask {
			n.Task.OutputToStream = true
		}
	}
}

// applyGreedyMarking implements phase M7: every predecessor option->task
// edge for a (task, argument) the pipeline's greedy table names gets
// isGreedy=true, and the task itself is marked greedy if any of its
// arguments are.
func applyGreedyMarking(g *graphmodel.Graph, pipeline schema.PipelineSchema) {
	for _, pair := range pipeline.GreedyTasks {
		taskID := ids.Task(pair.Task)
		marked := false
		for _, e := range g.EdgesTo(taskID) {
			if e.IsInput && e.LongFormArgument == pair.Argument {
				e.IsGreedy = true
				marked = true
			}
		}
		if marked {
			if n := g.GetNode(taskID); n != nil && n.Kind == graphmodel.KindTask {
				n.Task.IsGreedy = true
			}
		}
	}
}

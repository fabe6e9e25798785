package builder

import (
	"fmt"

	"github.com/pipeweave/graphc/pkg/graph"
	"github.com/pipeweave/graphc/pkg/graphmodel"
	"github.com/pipeweave/graphc/pkg/ids"
	"github.com/pipeweave/graphc/pkg/schema"
)

// Build constructs the disjoint union of per-task subgraphs for a pipeline:
// one task node per declared task, plus one option node (and file node(s),
// for file arguments) per argument the tool marks required or the pipeline
// references elsewhere. alloc is shared with every later phase so option
// IDs stay monotonically increasing across the whole compilation.
func Build(pipeline schema.PipelineSchema, tools *schema.Registry, alloc *ids.Allocator) (*graphmodel.Graph, error) {
	g := graphmodel.New()

	taskNames := make([]string, 0, len(pipeline.Tasks))
	for name := range pipeline.Tasks {
		taskNames = append(taskNames, name)
	}
	graph.SortDeterministic(taskNames)

	referenced := referencedArguments(pipeline)

	for _, taskName := range taskNames {
		toolName := pipeline.Tasks[taskName]
		tool, err := tools.Get(toolName)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w: %s", taskName, ErrUnknownTaskTool, toolName)
		}
		if tool.IsHidden {
			return nil, fmt.Errorf("task %q: %w: %s", taskName, ErrHiddenToolBound, toolName)
		}

		taskID := ids.Task(taskName)
		g.AddNode(graphmodel.NewTaskNode(taskID, toolName))
		g.GetNode(taskID).Task.ArgumentOrder = tool.ArgumentOrder

		argNames := make([]string, 0, len(tool.Arguments))
		for long := range tool.Arguments {
			argNames = append(argNames, long)
		}
		graph.SortDeterministic(argNames)

		for _, argName := range argNames {
			arg := tool.Arguments[argName]
			if !arg.IsRequired && !referenced[taskArgKey{taskName, argName}] {
				continue
			}
			if err := addArgument(g, alloc, taskID, arg); err != nil {
				return nil, fmt.Errorf("task %q argument %q: %w", taskName, argName, err)
			}
		}
	}

	return g, nil
}

type taskArgKey struct {
	task string
	arg  string
}

// referencedArguments collects every (task, argument) pair the pipeline
// mentions outside of a tool's own required-argument list: common-node
// members, originating-edge endpoints, greedy declarations, additional-node
// members and evaluate-command sources. The builder must materialise an
// option node for each of these even when the tool doesn't mark the
// argument required, or the merger will have nothing to merge into.
func referencedArguments(pipeline schema.PipelineSchema) map[taskArgKey]bool {
	out := map[taskArgKey]bool{}
	mark := func(ta schema.TaskArgument) {
		out[taskArgKey{ta.Task, ta.Argument}] = true
	}
	for _, node := range pipeline.Nodes {
		for _, pair := range node.Tasks {
			mark(pair)
		}
	}
	for _, edge := range pipeline.OriginatingEdges {
		mark(edge.Source)
		mark(edge.Target)
	}
	for _, pair := range pipeline.GreedyTasks {
		mark(pair)
	}
	for _, node := range pipeline.AdditionalNodes {
		for _, pair := range node.Tasks {
			mark(pair)
		}
	}
	for _, ec := range pipeline.EvaluateCommands {
		for _, pair := range ec.Sources {
			mark(pair)
		}
	}
	return out
}

// addArgument creates one option node (and its file node(s), if the
// argument is a file) for a task, populated from the tool's argument
// schema, and links it to the task with a directional edge.
func addArgument(g *graphmodel.Graph, alloc *ids.Allocator, taskID ids.ID, arg schema.Argument) error {
	optionID := alloc.NextOption()
	option := graphmodel.NewOptionNode(optionID)
	populateOption(option.Option, arg)
	g.AddNode(option)

	if err := linkOption(g, taskID, optionID, arg); err != nil {
		return err
	}

	if !arg.IsFile() {
		return nil
	}

	option = g.GetNode(optionID)
	for _, file := range NewFileNodes(optionID, arg) {
		g.AddNode(file)
		option.Option.AssociatedFileNodes = append(option.Option.AssociatedFileNodes, file.ID)
		if err := linkFile(g, taskID, file.ID, arg); err != nil {
			return err
		}
	}
	return nil
}

// NewOption creates a populated option node for an argument schema under
// the given ID. Exported for phases that materialise option nodes outside
// the initial build pass: the merger's placeholder realisation (phase M2)
// and the additional-node pass, and the parameter-set binder's tool-mode
// synthesis.
func NewOption(id ids.ID, arg schema.Argument) *graphmodel.Node {
	n := graphmodel.NewOptionNode(id)
	populateOption(n.Option, arg)
	return n
}

// NewFile creates a populated file node for an argument schema under the
// given ID and extension, without linking it to any task. Exported for the
// same late-materialisation callers as NewOption.
func NewFile(id ids.ID, ext string, arg schema.Argument) *graphmodel.Node {
	n := graphmodel.NewFileNode(id)
	n.File.Description = arg.Description
	n.File.AllowedExtension = ext
	n.File.AllowMultipleValues = arg.AllowMultipleValues
	return n
}

// NewFileNodes builds the file node(s) a file argument requires: one for a
// non-stub argument (suffix "_FILE"), one per declared extension for a
// filename-stub argument (suffix "_FILE_<k>"). Nodes are returned
// unattached to any graph or task; the caller adds them and links them.
func NewFileNodes(optionID ids.ID, arg schema.Argument) []*graphmodel.Node {
	if arg.IsFilenameStub {
		extensions := arg.StubExtensions()
		nodes := make([]*graphmodel.Node, 0, len(extensions))
		for i, ext := range extensions {
			suffix := fmt.Sprintf("_FILE_%d", i+1)
			nodes = append(nodes, NewFile(ids.File(optionID.Counter, suffix), ext, arg))
		}
		return nodes
	}
	extensions := arg.Extensions()
	ext := ""
	if len(extensions) > 0 {
		ext = extensions[0]
	}
	return []*graphmodel.Node{NewFile(ids.File(optionID.Counter, "_FILE"), ext, arg)}
}

// StreamPolicyOf maps a tool schema's ifOutputIsStream string to a
// StreamPolicy, exported for callers outside this package that construct
// output edges directly.
func StreamPolicyOf(policy string) graphmodel.StreamPolicy {
	return streamPolicyOf(policy)
}

func populateOption(o *graphmodel.OptionData, arg schema.Argument) {
	o.LongFormArgument = arg.LongForm
	o.ShortFormArgument = arg.ShortForm
	o.DataType = dataTypeOf(arg.Type)
	o.IsFile = arg.IsFile()
	o.IsInput = arg.IsInput
	o.IsOutput = arg.IsOutput
	o.IsRequired = arg.IsRequired
	o.IsFilenameStub = arg.IsFilenameStub
	o.AllowMultipleValues = arg.AllowMultipleValues
	o.CanBeSetByArgument = arg.CanBeSetByArgument
	o.Description = arg.Description
	for _, ext := range arg.Extensions() {
		o.AddAllowedExtension(ext)
	}
	for _, ext := range arg.StubExtensions() {
		o.AddAllowedExtension(ext)
	}
}

func dataTypeOf(t schema.ArgumentType) graphmodel.DataType {
	switch t {
	case schema.ArgumentString:
		return graphmodel.DataTypeString
	case schema.ArgumentInteger:
		return graphmodel.DataTypeInt
	case schema.ArgumentFloat:
		return graphmodel.DataTypeFloat
	case schema.ArgumentFile:
		return graphmodel.DataTypeFile
	default:
		return graphmodel.DataTypeFlag
	}
}

// linkFile edges a file node to its task in the direction the argument's
// I/O role dictates. Exported as LinkFile for the merger's file-node
// rewiring phase, which creates new file siblings after the initial build
// pass and must edge them the same way.
func linkFile(g *graphmodel.Graph, taskID, fileID ids.ID, arg schema.Argument) error {
	if arg.IsInput {
		edge, err := g.NewInputEdge(fileID, taskID, arg.LongForm, arg.ShortForm)
		if err != nil {
			return err
		}
		edge.IsFilenameStub = arg.IsFilenameStub
		g.AddEdge(edge)
	}
	if arg.IsOutput {
		edge, err := g.NewOutputEdge(taskID, fileID, arg.LongForm, arg.ShortForm)
		if err != nil {
			return err
		}
		edge.IsFilenameStub = arg.IsFilenameStub
		edge.IfOutputIsStream = streamPolicyOf(arg.IfOutputIsStream)
		g.AddEdge(edge)
	}
	return nil
}

// LinkFile is the exported form of linkFile for callers outside this
// package.
func LinkFile(g *graphmodel.Graph, taskID, fileID ids.ID, arg schema.Argument) error {
	return linkFile(g, taskID, fileID, arg)
}

// linkOption edges a non-file option directly to its task; file options are
// linked through their file node(s) instead (addArgument calls linkFile for
// each), but still carry
// the option -> task / task -> option edge so the merger has a uniform
// option-layer edge to rewire regardless of whether the argument is a file.
func linkOption(g *graphmodel.Graph, taskID, optionID ids.ID, arg schema.Argument) error {
	if arg.IsOutput {
		edge, err := g.NewOutputEdge(taskID, optionID, arg.LongForm, arg.ShortForm)
		if err != nil {
			return err
		}
		edge.IfOutputIsStream = streamPolicyOf(arg.IfOutputIsStream)
		g.AddEdge(edge)
		return nil
	}
	edge, err := g.NewInputEdge(optionID, taskID, arg.LongForm, arg.ShortForm)
	if err != nil {
		return err
	}
	g.AddEdge(edge)
	return nil
}

// LinkOption is the exported form of linkOption, for the merger's
// option-edge rewiring phase (M3), which wires a merge target to every
// task in its common-node entry, not just the task it was originally built
// for.
func LinkOption(g *graphmodel.Graph, taskID, optionID ids.ID, arg schema.Argument) error {
	return linkOption(g, taskID, optionID, arg)
}

func streamPolicyOf(policy string) graphmodel.StreamPolicy {
	if graphmodel.StreamPolicy(policy) == graphmodel.StreamDoNotInclude {
		return graphmodel.StreamDoNotInclude
	}
	return graphmodel.StreamInclude
}

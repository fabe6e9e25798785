package compiler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pipeweave/graphc/pkg/builder"
	"github.com/pipeweave/graphc/pkg/config"
	"github.com/pipeweave/graphc/pkg/evaluator"
	"github.com/pipeweave/graphc/pkg/graph"
	"github.com/pipeweave/graphc/pkg/graphmodel"
	"github.com/pipeweave/graphc/pkg/ids"
	"github.com/pipeweave/graphc/pkg/merger"
	"github.com/pipeweave/graphc/pkg/observer"
	"github.com/pipeweave/graphc/pkg/paramset"
	"github.com/pipeweave/graphc/pkg/schema"
	"github.com/pipeweave/graphc/pkg/scheduler"
)

// Options selects which named parameter sets to overlay before binding
// completes, and carries the reserved CLI passthrough arguments (spec.md
// §6): verbose logging and the parameter set to export once compilation
// finishes. Compile itself reads neither Verbose nor ExportParameterSet.
type Options struct {
	PipelineParameterSets []string
	ToolParameterSets     map[string][]string

	Verbose            bool
	ExportParameterSet string

	// Limits bounds pipeline size before any graph construction begins.
	// Nil falls back to config.Default().
	Limits *config.Config

	// Observers receives compile_start/phase_start/phase_success/
	// phase_failure/compile_end notifications for every phase Compile
	// runs. Nil disables notifications entirely.
	Observers *observer.Manager

	// PipelineID identifies the pipeline being compiled in emitted
	// observer events and telemetry, independent of CompilationID.
	PipelineID string

	// Context is used for the observer notifications and any telemetry
	// the registered observers record. Nil falls back to
	// context.Background().
	Context context.Context
}

// Result is everything a single compilation produces: an identifier for
// correlating logs/traces/metrics, the final graph (for introspection and
// parameter-set export), the common-node -> node-id map the binders used,
// the scheduler's workflow/deletion/dependency output, and the list of
// tasks the isolated-node check flagged.
type Result struct {
	CompilationID string
	Graph         *graphmodel.Graph
	NodeIDs       map[string]ids.ID
	Schedule      *scheduler.Result
	IsolatedTasks []string
}

// Compile runs a tool registry and pipeline schema through every phase:
// Build -> Merge -> originating edges -> additional nodes -> parameter
// sets -> evaluate commands -> unset flags -> required-argument
// verification -> Schedule -> isolated-node check.
func Compile(pipeline schema.PipelineSchema, tools *schema.Registry, opts Options) (*Result, error) {
	compilationID := uuid.New().String()
	alloc := ids.NewAllocator()

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	obs := newObservation(opts.Observers, compilationID, opts.PipelineID)
	obs.compileStart(ctx)

	limits := opts.Limits
	if limits == nil {
		limits = config.Default()
	}
	obs.phaseStart(ctx, "limits")
	err := checkLimits(pipeline, tools, limits)
	obs.phaseEnd(ctx, "limits", err, nil)
	if err != nil {
		err = fmt.Errorf("limits: %w", err)
		obs.compileEnd(ctx, err, 0)
		return nil, err
	}

	obs.phaseStart(ctx, "build")
	g, err := builder.Build(pipeline, tools, alloc)
	obs.phaseEnd(ctx, "build", err, nil)
	if err != nil {
		err = fmt.Errorf("build: %w", err)
		obs.compileEnd(ctx, err, 0)
		return nil, err
	}

	obs.phaseStart(ctx, "merge")
	nodeIDs, err := merger.Merge(g, pipeline, tools, alloc)
	obs.phaseEnd(ctx, "merge", err, nil)
	if err != nil {
		err = fmt.Errorf("merge: %w", err)
		obs.compileEnd(ctx, err, len(pipeline.Tasks))
		return nil, err
	}

	obs.phaseStart(ctx, "binders")
	if err := applyOriginatingEdges(g, pipeline, tools); err != nil {
		err = fmt.Errorf("originating edges: %w", err)
		obs.phaseEnd(ctx, "binders", err, nil)
		obs.compileEnd(ctx, err, len(pipeline.Tasks))
		return nil, err
	}
	if err := applyAdditionalNodes(g, pipeline, tools, alloc, nodeIDs); err != nil {
		err = fmt.Errorf("additional nodes: %w", err)
		obs.phaseEnd(ctx, "binders", err, nil)
		obs.compileEnd(ctx, err, len(pipeline.Tasks))
		return nil, err
	}

	for _, name := range opts.PipelineParameterSets {
		if err := paramset.ApplyPipelineSet(g, pipeline, nodeIDs, name); err != nil {
			err = fmt.Errorf("pipeline parameter set %q: %w", name, err)
			obs.phaseEnd(ctx, "binders", err, nil)
			obs.compileEnd(ctx, err, len(pipeline.Tasks))
			return nil, err
		}
	}
	for toolName, sets := range opts.ToolParameterSets {
		for _, name := range sets {
			if err := paramset.ApplyToolSet(g, pipeline, tools, alloc, toolName, name); err != nil {
				err = fmt.Errorf("tool parameter set %s/%q: %w", toolName, name, err)
				obs.phaseEnd(ctx, "binders", err, nil)
				obs.compileEnd(ctx, err, len(pipeline.Tasks))
				return nil, err
			}
		}
	}

	if err := evaluator.Apply(g, pipeline, nodeIDs); err != nil {
		err = fmt.Errorf("evaluate commands: %w", err)
		obs.phaseEnd(ctx, "binders", err, nil)
		obs.compileEnd(ctx, err, len(pipeline.Tasks))
		return nil, err
	}

	applyUnsetFlags(g)

	if err := verifyRequiredArguments(g); err != nil {
		err = fmt.Errorf("required arguments: %w", err)
		obs.phaseEnd(ctx, "binders", err, nil)
		obs.compileEnd(ctx, err, len(pipeline.Tasks))
		return nil, err
	}
	obs.phaseEnd(ctx, "binders", nil, nil)

	obs.phaseStart(ctx, "schedule")
	sched, err := scheduler.Schedule(g, pipeline, tools)
	if err != nil {
		err = fmt.Errorf("schedule: %w", err)
		obs.phaseEnd(ctx, "schedule", err, nil)
		obs.compileEnd(ctx, err, len(pipeline.Tasks))
		return nil, err
	}

	isolated := findIsolatedTasks(g, sched.Workflow)
	obs.phaseEnd(ctx, "schedule", nil, map[string]interface{}{
		"scheduled_tasks": len(sched.Workflow),
		"isolated_tasks":  len(isolated),
	})

	obs.compileEnd(ctx, nil, len(pipeline.Tasks))

	return &Result{
		CompilationID: compilationID,
		Graph:         g,
		NodeIDs:       nodeIDs,
		Schedule:      sched,
		IsolatedTasks: isolated,
	}, nil
}

// observation wraps an optional observer.Manager so every caller site in
// Compile can notify unconditionally without a nil check. A nil manager
// makes every method a no-op.
type observation struct {
	manager       *observer.Manager
	compilationID string
	pipelineID    string
}

func newObservation(manager *observer.Manager, compilationID, pipelineID string) *observation {
	return &observation{manager: manager, compilationID: compilationID, pipelineID: pipelineID}
}

func (o *observation) notify(ctx context.Context, typ observer.EventType, status observer.ExecutionStatus, phase string, err error, metadata map[string]interface{}) {
	if o.manager == nil {
		return
	}
	o.manager.Notify(ctx, observer.Event{
		Type:          typ,
		Status:        status,
		Timestamp:     time.Now(),
		CompilationID: o.compilationID,
		PipelineID:    o.pipelineID,
		Phase:         phase,
		Error:         err,
		Metadata:      metadata,
	})
}

func (o *observation) compileStart(ctx context.Context) {
	o.notify(ctx, observer.EventCompileStart, observer.StatusStarted, "", nil, nil)
}

func (o *observation) compileEnd(ctx context.Context, err error, taskCount int) {
	status := observer.StatusSuccess
	if err != nil {
		status = observer.StatusFailure
	}
	o.notify(ctx, observer.EventCompileEnd, status, "", err, map[string]interface{}{"task_count": taskCount})
}

func (o *observation) phaseStart(ctx context.Context, phase string) {
	o.notify(ctx, observer.EventPhaseStart, observer.StatusStarted, phase, nil, nil)
}

func (o *observation) phaseEnd(ctx context.Context, phase string, err error, metadata map[string]interface{}) {
	if err != nil {
		o.notify(ctx, observer.EventPhaseFailure, observer.StatusFailure, phase, err, metadata)
		return
	}
	o.notify(ctx, observer.EventPhaseSuccess, observer.StatusSuccess, phase, nil, metadata)
}

// checkLimits enforces pkg/config's size limits before Build/Merge run, so
// an oversized pipeline fails fast with a limit error instead of paying
// for graph construction first.
func checkLimits(pipeline schema.PipelineSchema, tools *schema.Registry, limits *config.Config) error {
	if err := limits.CheckTaskCount(len(pipeline.Tasks)); err != nil {
		return err
	}
	if err := limits.CheckCommonNodeCount(len(pipeline.Nodes)); err != nil {
		return err
	}
	for taskName, toolName := range pipeline.Tasks {
		tool, err := tools.Get(toolName)
		if err != nil {
			continue // builder.Build reports unknown tools; not this pass's concern
		}
		for argName, arg := range tool.Arguments {
			if !arg.IsFilenameStub {
				continue
			}
			if err := limits.CheckFilenameExtensionCount(len(arg.StubExtensions())); err != nil {
				return fmt.Errorf("task %q argument %q: %w", taskName, argName, err)
			}
		}
	}
	return nil
}

func toolForTask(pipeline schema.PipelineSchema, tools *schema.Registry, task string) (schema.ToolSchema, error) {
	toolName, err := pipeline.ToolFor(task)
	if err != nil {
		return schema.ToolSchema{}, err
	}
	return tools.Get(toolName)
}

// applyOriginatingEdges implements spec.md 4.6's originating-edges pass:
// pipeline-declared edges from a source (task, argument) to a target
// (task, argument) input, wired in both the option and file-node layers.
func applyOriginatingEdges(g *graphmodel.Graph, pipeline schema.PipelineSchema, tools *schema.Registry) error {
	for _, oe := range pipeline.OriginatingEdges {
		if err := applyOriginatingEdge(g, pipeline, tools, oe); err != nil {
			return err
		}
	}
	return nil
}

func applyOriginatingEdge(g *graphmodel.Graph, pipeline schema.PipelineSchema, tools *schema.Registry, oe schema.OriginatingEdge) error {
	sourceTool, err := toolForTask(pipeline, tools, oe.Source.Task)
	if err != nil {
		return err
	}
	sourceArg, err := sourceTool.Attribute(oe.Source.Argument)
	if err != nil {
		return err
	}
	if sourceArg.IsFilenameStub {
		return fmt.Errorf("%w: %s/%s", ErrOriginatingEdgeSourceIsStub, oe.Source.Task, oe.Source.Argument)
	}

	targetTool, err := toolForTask(pipeline, tools, oe.Target.Task)
	if err != nil {
		return err
	}
	targetArg, err := targetTool.Attribute(oe.Target.Argument)
	if err != nil {
		return err
	}
	if !targetArg.IsInput {
		return fmt.Errorf("%w: %s/%s", ErrOriginatingEdgeTargetNotInput, oe.Target.Task, oe.Target.Argument)
	}

	sourceOptID, ok := merger.FindOption(g, oe.Source.Task, oe.Source.Argument)
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrOriginatingEdgeUnresolved, oe.Source.Task, oe.Source.Argument)
	}
	sourceNode := g.GetNode(sourceOptID)
	targetTaskID := ids.Task(oe.Target.Task)

	g.AddEdge(&graphmodel.Edge{
		Source:               sourceOptID,
		Target:                targetTaskID,
		LongFormArgument:      targetArg.LongForm,
		ShortFormArgument:     targetArg.ShortForm,
		IsInput:               true,
		IncludeOnCommandLine:  true,
		IfOutputIsStream:      graphmodel.StreamInclude,
		IsOriginatingEdge:     true,
	})

	if sourceNode.Option.IsFile && targetArg.IsFile() {
		for _, fid := range sourceNode.Option.AssociatedFileNodes {
			g.AddEdge(&graphmodel.Edge{
				Source:               fid,
				Target:                targetTaskID,
				LongFormArgument:      targetArg.LongForm,
				ShortFormArgument:     targetArg.ShortForm,
				IsInput:               true,
				IncludeOnCommandLine:  true,
				IfOutputIsStream:      graphmodel.StreamInclude,
				IsOriginatingEdge:     true,
			})
		}
	}
	return nil
}

// applyAdditionalNodes implements spec.md 4.6's additional-nodes pass: a
// common node aggregating several (task, argument) pairs with no
// pre-existing option node among them. One option node is allocated from
// the first pair's schema and edged to every pair's task.
func applyAdditionalNodes(g *graphmodel.Graph, pipeline schema.PipelineSchema, tools *schema.Registry, alloc *ids.Allocator, nodeIDs map[string]ids.ID) error {
	for _, an := range pipeline.AdditionalNodes {
		if err := applyAdditionalNode(g, pipeline, tools, alloc, nodeIDs, an); err != nil {
			return err
		}
	}
	return nil
}

func applyAdditionalNode(g *graphmodel.Graph, pipeline schema.PipelineSchema, tools *schema.Registry, alloc *ids.Allocator, nodeIDs map[string]ids.ID, an schema.AdditionalNode) error {
	if len(an.Tasks) == 0 {
		return nil
	}
	first := an.Tasks[0]
	firstTool, err := toolForTask(pipeline, tools, first.Task)
	if err != nil {
		return err
	}
	firstArg, err := firstTool.Attribute(first.Argument)
	if err != nil {
		return err
	}

	optID := alloc.NextOption()
	node := builder.NewOption(optID, firstArg)
	g.AddNode(node)
	if firstArg.IsFile() {
		for _, f := range builder.NewFileNodes(optID, firstArg) {
			g.AddNode(f)
			node.Option.AssociatedFileNodes = append(node.Option.AssociatedFileNodes, f.ID)
		}
	}

	for _, pair := range an.Tasks {
		taskID := ids.Task(pair.Task)
		pairTool, err := toolForTask(pipeline, tools, pair.Task)
		if err != nil {
			return err
		}
		pairArg, err := pairTool.Attribute(pair.Argument)
		if err != nil {
			return err
		}
		if err := builder.LinkOption(g, taskID, optID, pairArg); err != nil {
			return err
		}
		if pairArg.IsFile() {
			for _, fid := range node.Option.AssociatedFileNodes {
				if err := builder.LinkFile(g, taskID, fid, pairArg); err != nil {
					return err
				}
			}
		}
	}

	nodeIDs[an.ID] = optID
	return nil
}

// applyUnsetFlags implements spec.md 4.6's unset-flags pass: every flag
// option left with no bound value reads as "unset" downstream.
func applyUnsetFlags(g *graphmodel.Graph) {
	for _, n := range g.NodesOfKind(graphmodel.KindOption) {
		if n.Option.DataType == graphmodel.DataTypeFlag && n.Option.Values.IterationCount() == 0 {
			n.Option.Values = graphmodel.Values{1: {"unset"}}
		}
	}
}

// verifyRequiredArguments implements spec.md 4.7: for every task, every
// required predecessor option left empty is satisfied if a sibling option
// for the same long-form argument (introduced by an originating edge) has
// values; empty siblings are then purged. A long-form argument with no
// satisfied alternative is a fatal requirement error.
func verifyRequiredArguments(g *graphmodel.Graph) error {
	for _, task := range g.NodesOfKind(graphmodel.KindTask) {
		byArg := map[string][]*graphmodel.Node{}
		for _, e := range g.EdgesTo(task.ID) {
			if !e.IsInput {
				continue
			}
			opt := optionOwning(g, e.Source)
			if opt == nil || !opt.Option.IsRequired {
				continue
			}
			byArg[opt.Option.LongFormArgument] = append(byArg[opt.Option.LongFormArgument], opt)
		}

		longForms := make([]string, 0, len(byArg))
		for lf := range byArg {
			longForms = append(longForms, lf)
		}
		graph.SortDeterministic(longForms)

		for _, longForm := range longForms {
			opts := byArg[longForm]
			satisfiedIdx := -1
			for i, opt := range opts {
				if opt.Option.Values.IterationCount() > 0 {
					satisfiedIdx = i
					break
				}
			}
			if satisfiedIdx == -1 {
				first := opts[0]
				return fmt.Errorf("%w: %s (%s) %q, alternatives: %v",
					ErrRequiredArgumentUnsatisfied, longForm, first.Option.ShortFormArgument,
					first.Option.Description, first.Option.CanBeSetByArgument)
			}
			for i, opt := range opts {
				if i == satisfiedIdx {
					continue
				}
				if opt.Option.Values.IterationCount() == 0 {
					opt.MarkForRemoval()
					for _, fid := range opt.Option.AssociatedFileNodes {
						if fn := g.GetNode(fid); fn != nil {
							fn.MarkForRemoval()
						}
					}
				}
			}
		}
	}
	purgeMarked(g)
	return nil
}

// optionOwning returns the option node a predecessor edge's source
// belongs to: itself if the source is already an option node, or the
// option that lists it as an associated file node.
func optionOwning(g *graphmodel.Graph, id ids.ID) *graphmodel.Node {
	n := g.GetNode(id)
	if n == nil {
		return nil
	}
	if n.Kind == graphmodel.KindOption {
		return n
	}
	if n.Kind != graphmodel.KindFile {
		return nil
	}
	for _, opt := range g.NodesOfKind(graphmodel.KindOption) {
		for _, fid := range opt.Option.AssociatedFileNodes {
			if fid == id {
				return opt
			}
		}
	}
	return nil
}

func purgeMarked(g *graphmodel.Graph) {
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

// findIsolatedTasks implements spec.md 4.8: a task is isolated iff none of
// its predecessor file nodes have any other producer or any other
// consumer, and none of its successor file nodes have any consumer at
// all.
func findIsolatedTasks(g *graphmodel.Graph, order []string) []string {
	var isolated []string
	for _, taskName := range order {
		taskID := ids.Task(taskName)
		ok := true

		for _, e := range g.EdgesTo(taskID) {
			if !e.IsInput {
				continue
			}
			file := g.GetNode(e.Source)
			if file == nil || file.Kind != graphmodel.KindFile {
				continue
			}
			hasOtherProducer := false
			for _, pe := range g.EdgesTo(file.ID) {
				if pe.IsOutput {
					hasOtherProducer = true
					break
				}
			}
			hasOtherConsumer := false
			for _, ce := range g.EdgesFrom(file.ID) {
				if ce.IsInput && ce.Target != taskID {
					hasOtherConsumer = true
					break
				}
			}
			if hasOtherProducer || hasOtherConsumer {
				ok = false
				break
			}
		}

		if ok {
			for _, e := range g.EdgesFrom(taskID) {
				if !e.IsOutput {
					continue
				}
				file := g.GetNode(e.Target)
				if file == nil || file.Kind != graphmodel.KindFile {
					continue
				}
				hasConsumer := false
				for _, ce := range g.EdgesFrom(file.ID) {
					if ce.IsInput {
						hasConsumer = true
						break
					}
				}
				if hasConsumer {
					ok = false
					break
				}
			}
		}

		if ok {
			isolated = append(isolated, taskName)
		}
	}
	return isolated
}

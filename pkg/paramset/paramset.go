package paramset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pipeweave/graphc/pkg/builder"
	"github.com/pipeweave/graphc/pkg/graphmodel"
	"github.com/pipeweave/graphc/pkg/ids"
	"github.com/pipeweave/graphc/pkg/merger"
	"github.com/pipeweave/graphc/pkg/schema"
)

// ApplyPipelineSet overlays a named pipeline-mode parameter set onto the
// merged graph. Each entry's ID is looked up in the pipeline's argument
// table (PipelineArguments) to find its common node; an ID absent from that
// table is taken as a common-node ID itself. The common node is resolved to
// a graph option node via nodeIDs (the merger's common-node map), falling
// back to scanning the common node's first declared (task, argument) pair
// when the common node never went through a merge.
func ApplyPipelineSet(g *graphmodel.Graph, pipeline schema.PipelineSchema, nodeIDs map[string]ids.ID, setName string) error {
	if strings.TrimSpace(setName) == "" {
		return ErrEmptyName
	}
	entries, ok := pipeline.ParameterSets[setName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameterSet, setName)
	}
	for _, entry := range entries {
		commonID := entry.ID
		if mapped, ok := pipeline.PipelineArguments[entry.ID]; ok {
			commonID = mapped
		}
		nodeID, err := resolvePipelineTarget(g, pipeline, nodeIDs, commonID)
		if err != nil {
			return err
		}
		node := g.GetNode(nodeID)
		if node == nil || node.Kind != graphmodel.KindOption {
			return fmt.Errorf("%w: %s", ErrUnresolvedParameterTarget, commonID)
		}
		writeValues(node.Option, entry)
	}
	return nil
}

func resolvePipelineTarget(g *graphmodel.Graph, pipeline schema.PipelineSchema, nodeIDs map[string]ids.ID, commonID string) (ids.ID, error) {
	if id, ok := nodeIDs[commonID]; ok {
		return id, nil
	}
	cn, found := pipeline.CommonNodeByID(commonID)
	if !found || len(cn.Tasks) == 0 {
		return ids.ID{}, fmt.Errorf("%w: %s", ErrUnknownParameterSetID, commonID)
	}
	pair := cn.Tasks[0]
	id, ok := merger.FindOption(g, pair.Task, pair.Argument)
	if !ok {
		return ids.ID{}, fmt.Errorf("%w: %s", ErrUnresolvedParameterTarget, commonID)
	}
	return id, nil
}

// ApplyToolSet overlays a named tool-mode parameter set onto the single
// pipeline task bound to toolName. An entry whose argument has no option
// node yet (the builder only materialises required-or-referenced
// arguments) is synthesised from the tool schema, including its file
// node(s) when the argument is a file.
func ApplyToolSet(g *graphmodel.Graph, pipeline schema.PipelineSchema, tools *schema.Registry, alloc *ids.Allocator, toolName, setName string) error {
	if strings.TrimSpace(setName) == "" {
		return ErrEmptyName
	}
	tool, err := tools.Get(toolName)
	if err != nil {
		return err
	}
	entries, ok := tool.ParameterSets[setName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameterSet, setName)
	}

	taskName, err := singleTaskForTool(pipeline, toolName)
	if err != nil {
		return err
	}
	taskID := ids.Task(taskName)

	for _, entry := range entries {
		argument := entry.Argument
		if argument == "" {
			argument = entry.ID
		}
		arg, err := tool.Attribute(argument)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidArgumentForTool, argument)
		}

		nodeID, exists := merger.FindOption(g, taskName, arg.LongForm)
		if !exists {
			optID := alloc.NextOption()
			node := builder.NewOption(optID, arg)
			g.AddNode(node)
			if err := builder.LinkOption(g, taskID, optID, arg); err != nil {
				return err
			}
			if arg.IsFile() {
				for _, f := range builder.NewFileNodes(optID, arg) {
					g.AddNode(f)
					node.Option.AssociatedFileNodes = append(node.Option.AssociatedFileNodes, f.ID)
					if err := builder.LinkFile(g, taskID, f.ID, arg); err != nil {
						return err
					}
				}
			}
			nodeID = optID
		}

		node := g.GetNode(nodeID)
		writeValues(node.Option, entry)
	}
	return nil
}

// singleTaskForTool finds the one pipeline task bound to toolName. Tool
// mode parameter sets have no task of their own to target, so the binder
// requires the binding to be unambiguous.
func singleTaskForTool(pipeline schema.PipelineSchema, toolName string) (string, error) {
	var names []string
	for task, tool := range pipeline.Tasks {
		if tool == toolName {
			names = append(names, task)
		}
	}
	sort.Strings(names)
	switch len(names) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNoTaskForTool, toolName)
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousToolTask, toolName)
	}
}

// writeValues overwrites an option's values, keying the set's value list
// under iteration 1 per spec.md §4.4.
func writeValues(o *graphmodel.OptionData, entry schema.ParameterSetEntry) {
	o.Values = graphmodel.Values{1: append([]string(nil), entry.Values...)}
}

// ExportPipelineSet reads back a named pipeline-mode parameter set's
// current values from a solved graph, the inverse of ApplyPipelineSet,
// used by the round-trip testable property (spec.md §8 property 5).
func ExportPipelineSet(g *graphmodel.Graph, pipeline schema.PipelineSchema, nodeIDs map[string]ids.ID, argumentNames []string) ([]schema.ParameterSetEntry, error) {
	entries := make([]schema.ParameterSetEntry, 0, len(argumentNames))
	for _, argument := range argumentNames {
		commonID, ok := pipeline.PipelineArguments[argument]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParameterSetID, argument)
		}
		nodeID, err := resolvePipelineTarget(g, pipeline, nodeIDs, commonID)
		if err != nil {
			return nil, err
		}
		node := g.GetNode(nodeID)
		if node == nil || node.Kind != graphmodel.KindOption {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedParameterTarget, commonID)
		}
		entries = append(entries, schema.ParameterSetEntry{
			ID:     commonID,
			Values: append([]string(nil), node.Option.Values.At(1)...),
		})
	}
	return entries, nil
}

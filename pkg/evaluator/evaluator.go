package evaluator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pipeweave/graphc/pkg/graphmodel"
	"github.com/pipeweave/graphc/pkg/ids"
	"github.com/pipeweave/graphc/pkg/merger"
	"github.com/pipeweave/graphc/pkg/schema"
)

// Apply runs every pipeline-declared evaluate command against the merged
// graph. nodeIDs is the merger's common-node -> node-id map, the same map
// pkg/paramset resolves pipeline-mode sets through.
func Apply(g *graphmodel.Graph, pipeline schema.PipelineSchema, nodeIDs map[string]ids.ID) error {
	for _, ec := range pipeline.EvaluateCommands {
		if err := applyOne(g, pipeline, nodeIDs, ec); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(g *graphmodel.Graph, pipeline schema.PipelineSchema, nodeIDs map[string]ids.ID, ec schema.EvaluateCommand) error {
	targetID, err := resolveTarget(g, pipeline, nodeIDs, ec.Argument)
	if err != nil {
		return err
	}
	target := g.GetNode(targetID)
	if target == nil || target.Kind != graphmodel.KindOption {
		return fmt.Errorf("%w: %s", ErrUnresolvedTarget, ec.Argument)
	}
	if target.Option.Values.IterationCount() > 0 {
		// A user-supplied value on the target argument wins over the
		// template; the binder only fills in arguments left unset.
		return nil
	}

	names := make([]string, 0, len(ec.Sources))
	for name := range ec.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	sourceValues := make(map[string]graphmodel.Values, len(names))
	maxIter := 1
	for _, name := range names {
		pair := ec.Sources[name]
		optID, ok := merger.FindOption(g, pair.Task, pair.Argument)
		if !ok {
			return fmt.Errorf("%w: %s (%s.%s)", ErrUnknownSource, name, pair.Task, pair.Argument)
		}
		node := g.GetNode(optID)
		if node == nil || node.Kind != graphmodel.KindOption {
			return fmt.Errorf("%w: %s (%s.%s)", ErrUnknownSource, name, pair.Task, pair.Argument)
		}
		values := node.Option.Values
		sourceValues[name] = values
		if n := values.IterationCount(); n > 1 {
			if maxIter > 1 && n != maxIter {
				return fmt.Errorf("%w: %s", ErrIncompatibleIterationCounts, ec.Argument)
			}
			maxIter = n
		}
	}
	for _, name := range names {
		n := sourceValues[name].IterationCount()
		if n != 0 && n != 1 && n != maxIter {
			return fmt.Errorf("%w: %s", ErrIncompatibleIterationCounts, ec.Argument)
		}
	}

	out := graphmodel.Values{}
	for i := 1; i <= maxIter; i++ {
		rendered := ec.Template
		for _, name := range names {
			value := ""
			if vs := sourceValues[name].At(i); len(vs) > 0 {
				value = vs[0]
			}
			rendered = strings.ReplaceAll(rendered, "$"+name, value)
		}
		out[i] = []string{"$(" + rendered + ")"}
	}
	target.Option.Values = out
	target.Option.IsCommandToEvaluate = true

	wireProvenance(g, ec, names, targetID)
	return nil
}

// resolveTarget finds the graph option node the evaluate command writes
// its rendered values into. ec.Argument names a common node, resolved
// through nodeIDs first and falling back to a direct scan of the common
// node's first declared pair, the same two-step fallback pkg/paramset uses
// for pipeline-mode sets.
func resolveTarget(g *graphmodel.Graph, pipeline schema.PipelineSchema, nodeIDs map[string]ids.ID, argument string) (ids.ID, error) {
	if id, ok := nodeIDs[argument]; ok {
		return id, nil
	}
	cn, found := pipeline.CommonNodeByID(argument)
	if !found || len(cn.Tasks) == 0 {
		return ids.ID{}, fmt.Errorf("%w: %s", ErrUnresolvedTarget, argument)
	}
	pair := cn.Tasks[0]
	id, ok := merger.FindOption(g, pair.Task, pair.Argument)
	if !ok {
		return ids.ID{}, fmt.Errorf("%w: %s", ErrUnresolvedTarget, argument)
	}
	return id, nil
}

// wireProvenance adds a scheduling-invisible edge from each source option
// (and its primary file node, if it is a file argument) to every task the
// target option feeds, tagging provenance without affecting command-line
// inclusion, greedy marking or streaming. These edges carry neither
// IsInput nor IsOutput, so pkg/graph's TaskAdjacency never traverses them.
func wireProvenance(g *graphmodel.Graph, ec schema.EvaluateCommand, names []string, targetID ids.ID) {
	consumers := map[ids.ID]struct{}{}
	for _, e := range g.EdgesFrom(targetID) {
		if g.GetNode(e.Target) != nil && g.GetNode(e.Target).Kind == graphmodel.KindTask {
			consumers[e.Target] = struct{}{}
		}
	}

	for _, name := range names {
		pair := ec.Sources[name]
		sourceID, ok := merger.FindOption(g, pair.Task, pair.Argument)
		if !ok {
			continue
		}
		source := g.GetNode(sourceID)
		for consumerID := range consumers {
			g.AddEdge(&graphmodel.Edge{
				Source:            sourceID,
				Target:            consumerID,
				LongFormArgument:  pair.Argument,
				ShortFormArgument: source.Option.ShortFormArgument,
				IsEvaluateCommand: true,
			})
			for _, fileID := range source.Option.AssociatedFileNodes {
				g.AddEdge(&graphmodel.Edge{
					Source:            fileID,
					Target:            consumerID,
					LongFormArgument:  pair.Argument,
					ShortFormArgument: source.Option.ShortFormArgument,
					IsEvaluateCommand: true,
				})
			}
		}
	}
}

package evaluator

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pipeweave/graphc/pkg/graphmodel"
	"github.com/pipeweave/graphc/pkg/ids"
	"github.com/pipeweave/graphc/pkg/schema"
)

// buildEvalGraph wires a source option (task a / --ref) and a target option
// bound to task b, the shape Apply expects: target resolved via nodeIDs,
// source resolved by scanning task a's edges.
func buildEvalGraph(t *testing.T, sourceValues []string) (*graphmodel.Graph, ids.ID, ids.ID) {
	t.Helper()
	g := graphmodel.New()
	a := ids.Task("a")
	b := ids.Task("b")
	source := ids.Option(1)
	target := ids.Option(2)

	g.AddNode(graphmodel.NewTaskNode(a, "tool_a"))
	g.AddNode(graphmodel.NewTaskNode(b, "tool_b"))
	g.AddNode(graphmodel.NewOptionNode(source))
	g.GetNode(source).Option.Values.Set(1, sourceValues)
	g.AddNode(graphmodel.NewOptionNode(target))

	srcEdge, err := g.NewInputEdge(source, a, "--ref", "")
	if err != nil {
		t.Fatalf("NewInputEdge() error = %v", err)
	}
	g.AddEdge(srcEdge)

	tgtEdge, err := g.NewInputEdge(target, b, "--cmd", "")
	if err != nil {
		t.Fatalf("NewInputEdge() error = %v", err)
	}
	g.AddEdge(tgtEdge)

	return g, source, target
}

func TestApplyRendersTemplate(t *testing.T) {
	g, _, target := buildEvalGraph(t, []string{"genome.fa"})

	pipeline := schema.PipelineSchema{
		Tasks: map[string]string{"a": "tool_a", "b": "tool_b"},
		EvaluateCommands: []schema.EvaluateCommand{
			{
				Argument: "cmd",
				Template: "align --ref $ref",
				Sources:  map[string]schema.TaskArgument{"ref": {Task: "a", Argument: "--ref"}},
			},
		},
	}
	nodeIDs := map[string]ids.ID{"cmd": target}

	if err := Apply(g, pipeline, nodeIDs); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	node := g.GetNode(target)
	if !node.Option.IsCommandToEvaluate {
		t.Fatalf("expected target option to be marked IsCommandToEvaluate")
	}
	want := []string{"$(align --ref genome.fa)"}
	if !reflect.DeepEqual(node.Option.Values.At(1), want) {
		t.Fatalf("Values.At(1) = %v, want %v", node.Option.Values.At(1), want)
	}
}

func TestApplyDoesNotOverwriteUserSuppliedValue(t *testing.T) {
	g, _, target := buildEvalGraph(t, []string{"genome.fa"})
	g.GetNode(target).Option.Values.Set(1, []string{"user supplied"})

	pipeline := schema.PipelineSchema{
		Tasks: map[string]string{"a": "tool_a", "b": "tool_b"},
		EvaluateCommands: []schema.EvaluateCommand{
			{
				Argument: "cmd",
				Template: "align --ref $ref",
				Sources:  map[string]schema.TaskArgument{"ref": {Task: "a", Argument: "--ref"}},
			},
		},
	}
	nodeIDs := map[string]ids.ID{"cmd": target}

	if err := Apply(g, pipeline, nodeIDs); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	got := g.GetNode(target).Option.Values.At(1)
	if !reflect.DeepEqual(got, []string{"user supplied"}) {
		t.Fatalf("Values.At(1) = %v, want unchanged [user supplied]", got)
	}
}

func TestApplyUnknownSource(t *testing.T) {
	g, _, target := buildEvalGraph(t, []string{"genome.fa"})

	pipeline := schema.PipelineSchema{
		Tasks: map[string]string{"a": "tool_a", "b": "tool_b"},
		EvaluateCommands: []schema.EvaluateCommand{
			{
				Argument: "cmd",
				Template: "align --ref $ref",
				Sources:  map[string]schema.TaskArgument{"ref": {Task: "a", Argument: "--missing"}},
			},
		},
	}
	nodeIDs := map[string]ids.ID{"cmd": target}

	if err := Apply(g, pipeline, nodeIDs); !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("Apply() error = %v, want ErrUnknownSource", err)
	}
}

func TestApplyIncompatibleIterationCounts(t *testing.T) {
	g := graphmodel.New()
	a := ids.Task("a")
	b := ids.Task("b")
	src1 := ids.Option(1)
	src2 := ids.Option(2)
	target := ids.Option(3)

	g.AddNode(graphmodel.NewTaskNode(a, "tool_a"))
	g.AddNode(graphmodel.NewTaskNode(b, "tool_b"))
	g.AddNode(graphmodel.NewOptionNode(src1))
	g.GetNode(src1).Option.Values = graphmodel.Values{1: {"a"}, 2: {"b"}}
	g.AddNode(graphmodel.NewOptionNode(src2))
	g.GetNode(src2).Option.Values = graphmodel.Values{1: {"x"}, 2: {"y"}, 3: {"z"}}
	g.AddNode(graphmodel.NewOptionNode(target))

	e1, _ := g.NewInputEdge(src1, a, "--one", "")
	g.AddEdge(e1)
	e2, _ := g.NewInputEdge(src2, a, "--two", "")
	g.AddEdge(e2)
	e3, _ := g.NewInputEdge(target, b, "--cmd", "")
	g.AddEdge(e3)

	pipeline := schema.PipelineSchema{
		Tasks: map[string]string{"a": "tool_a", "b": "tool_b"},
		EvaluateCommands: []schema.EvaluateCommand{
			{
				Argument: "cmd",
				Template: "$one $two",
				Sources: map[string]schema.TaskArgument{
					"one": {Task: "a", Argument: "--one"},
					"two": {Task: "a", Argument: "--two"},
				},
			},
		},
	}
	nodeIDs := map[string]ids.ID{"cmd": target}

	if err := Apply(g, pipeline, nodeIDs); !errors.Is(err, ErrIncompatibleIterationCounts) {
		t.Fatalf("Apply() error = %v, want ErrIncompatibleIterationCounts", err)
	}
}

func TestApplyWiresProvenanceEdges(t *testing.T) {
	g, source, target := buildEvalGraph(t, []string{"genome.fa"})

	pipeline := schema.PipelineSchema{
		Tasks: map[string]string{"a": "tool_a", "b": "tool_b"},
		EvaluateCommands: []schema.EvaluateCommand{
			{
				Argument: "cmd",
				Template: "align --ref $ref",
				Sources:  map[string]schema.TaskArgument{"ref": {Task: "a", Argument: "--ref"}},
			},
		},
	}
	nodeIDs := map[string]ids.ID{"cmd": target}

	if err := Apply(g, pipeline, nodeIDs); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	found := false
	for _, e := range g.EdgesFrom(source) {
		if e.IsEvaluateCommand && e.Target == ids.Task("b") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a provenance edge from source option to task b")
	}
}

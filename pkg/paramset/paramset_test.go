package paramset

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pipeweave/graphc/pkg/builder"
	"github.com/pipeweave/graphc/pkg/ids"
	"github.com/pipeweave/graphc/pkg/merger"
	"github.com/pipeweave/graphc/pkg/schema"
)

func toolsWithThreadsAndRef(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	tool := schema.ToolSchema{
		Description: "a pipeline tool",
		Arguments: map[string]schema.Argument{
			"--threads":   {LongForm: "--threads", Description: "thread count", Type: schema.ArgumentInteger, IsRequired: true},
			"--reference": {LongForm: "--reference", Description: "reference genome", Type: schema.ArgumentFile, IsInput: true, AllowedExtensions: []string{"fa"}},
		},
		ParameterSets: map[string][]schema.ParameterSetEntry{
			"fast": {{ID: "--threads", Argument: "--threads", Values: []string{"16"}}},
		},
	}
	if err := reg.Add("toolA", tool); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return reg
}

func TestApplyPipelineSetWritesValues(t *testing.T) {
	tools := toolsWithThreadsAndRef(t)
	pipeline := schema.PipelineSchema{
		Tasks: map[string]string{"a": "toolA"},
		Nodes: []schema.CommonNode{
			{ID: "threads", Tasks: []schema.TaskArgument{{Task: "a", Argument: "--threads"}}},
		},
		ParameterSets: map[string][]schema.ParameterSetEntry{
			"fast": {{ID: "threads", Values: []string{"32"}}},
		},
	}

	alloc := ids.NewAllocator()
	g, err := builder.Build(pipeline, tools, alloc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	nodeIDs, err := merger.Merge(g, pipeline, tools, alloc)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	if err := ApplyPipelineSet(g, pipeline, nodeIDs, "fast"); err != nil {
		t.Fatalf("ApplyPipelineSet() error = %v", err)
	}

	id, ok := merger.FindOption(g, "a", "--threads")
	if !ok {
		t.Fatalf("expected option node for --threads")
	}
	node := g.GetNode(id)
	if !reflect.DeepEqual(node.Option.Values.At(1), []string{"32"}) {
		t.Fatalf("Values.At(1) = %v, want [32]", node.Option.Values.At(1))
	}
}

func TestApplyPipelineSetUnknownSet(t *testing.T) {
	tools := toolsWithThreadsAndRef(t)
	pipeline := schema.PipelineSchema{Tasks: map[string]string{"a": "toolA"}}

	alloc := ids.NewAllocator()
	g, err := builder.Build(pipeline, tools, alloc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	nodeIDs, err := merger.Merge(g, pipeline, tools, alloc)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	if err := ApplyPipelineSet(g, pipeline, nodeIDs, "missing"); err == nil {
		t.Fatalf("ApplyPipelineSet() error = nil, want error for unknown set")
	}
}

func TestApplyPipelineSetEmptyName(t *testing.T) {
	if err := ApplyPipelineSet(nil, schema.PipelineSchema{}, nil, ""); err != ErrEmptyName {
		t.Fatalf("ApplyPipelineSet() error = %v, want ErrEmptyName", err)
	}
}

func TestApplyToolSetSynthesizesMissingOption(t *testing.T) {
	// --threads is required, so build materialises it; --reference is not
	// required and not referenced, so tool-set application must synthesise
	// its option (and file) node from scratch.
	pipeline := schema.PipelineSchema{Tasks: map[string]string{"a": "toolA"}}

	toolsWithRefSet := schema.NewRegistry()
	toolSchema := schema.ToolSchema{
		Description: "a pipeline tool",
		Arguments: map[string]schema.Argument{
			"--threads":   {LongForm: "--threads", Description: "thread count", Type: schema.ArgumentInteger, IsRequired: true},
			"--reference": {LongForm: "--reference", Description: "reference genome", Type: schema.ArgumentFile, IsInput: true, AllowedExtensions: []string{"fa"}},
		},
		ParameterSets: map[string][]schema.ParameterSetEntry{
			"withref": {{ID: "--reference", Argument: "--reference", Values: []string{"genome.fa"}}},
		},
	}
	if err := toolsWithRefSet.Add("toolA", toolSchema); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	alloc := ids.NewAllocator()
	g, err := builder.Build(pipeline, toolsWithRefSet, alloc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, ok := merger.FindOption(g, "a", "--reference"); ok {
		t.Fatalf("expected --reference to not yet be materialised before tool-set application")
	}

	if err := ApplyToolSet(g, pipeline, toolsWithRefSet, alloc, "toolA", "withref"); err != nil {
		t.Fatalf("ApplyToolSet() error = %v", err)
	}

	id, ok := merger.FindOption(g, "a", "--reference")
	if !ok {
		t.Fatalf("expected --reference option node to be synthesised")
	}
	node := g.GetNode(id)
	if !reflect.DeepEqual(node.Option.Values.At(1), []string{"genome.fa"}) {
		t.Fatalf("Values.At(1) = %v, want [genome.fa]", node.Option.Values.At(1))
	}
	if len(node.Option.AssociatedFileNodes) != 1 {
		t.Fatalf("expected a file node to be synthesised for the file argument")
	}
}

func TestApplyToolSetAmbiguousTask(t *testing.T) {
	tools := toolsWithThreadsAndRef(t)
	pipeline := schema.PipelineSchema{Tasks: map[string]string{"a": "toolA", "b": "toolA"}}

	alloc := ids.NewAllocator()
	g, err := builder.Build(pipeline, tools, alloc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if err := ApplyToolSet(g, pipeline, tools, alloc, "toolA", "fast"); !errors.Is(err, ErrAmbiguousToolTask) {
		t.Fatalf("ApplyToolSet() error = %v, want ErrAmbiguousToolTask", err)
	}
}

func TestExportPipelineSetRoundTrip(t *testing.T) {
	tools := toolsWithThreadsAndRef(t)
	pipeline := schema.PipelineSchema{
		Tasks: map[string]string{"a": "toolA"},
		Nodes: []schema.CommonNode{
			{ID: "threads", Tasks: []schema.TaskArgument{{Task: "a", Argument: "--threads"}}},
		},
		PipelineArguments: map[string]string{"threads": "threads"},
	}

	alloc := ids.NewAllocator()
	g, err := builder.Build(pipeline, tools, alloc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	nodeIDs, err := merger.Merge(g, pipeline, tools, alloc)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	id, ok := merger.FindOption(g, "a", "--threads")
	if !ok {
		t.Fatalf("expected option node for --threads")
	}
	g.GetNode(id).Option.Values.Set(1, []string{"8"})

	entries, err := ExportPipelineSet(g, pipeline, nodeIDs, []string{"threads"})
	if err != nil {
		t.Fatalf("ExportPipelineSet() error = %v", err)
	}
	if len(entries) != 1 || !reflect.DeepEqual(entries[0].Values, []string{"8"}) {
		t.Fatalf("ExportPipelineSet() = %v, want one entry with values [8]", entries)
	}
}

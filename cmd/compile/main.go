// Command compile compiles a single pipeline document against a set of
// tool definitions and prints the resulting workflow order, deletion
// plan, and dependency/output maps as JSON.
//
// Usage:
//
//	compile -tools tools/ -pipeline pipeline.json
//
// Flags:
//
//	-tools string
//	    Directory of tool definition JSON files (required)
//	-pipeline string
//	    Path to the pipeline document (required)
//	-pipeline-set string
//	    Name of a pipeline-level parameter set to apply (repeatable)
//	-verbose
//	    Log each compile phase as it runs (console observer, standard output)
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pipeweave/graphc/pkg/compiler"
	"github.com/pipeweave/graphc/pkg/observer"
	"github.com/pipeweave/graphc/pkg/schema"
)

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	toolsDir := flag.String("tools", "", "Directory of tool definition JSON files")
	pipelinePath := flag.String("pipeline", "", "Path to the pipeline document")
	verbose := flag.Bool("verbose", false, "Log each compile phase as it runs (to standard output)")
	var pipelineSets stringList
	flag.Var(&pipelineSets, "pipeline-set", "Name of a pipeline-level parameter set to apply (repeatable)")

	flag.Parse()

	if *toolsDir == "" || *pipelinePath == "" {
		fmt.Fprintln(os.Stderr, "usage: compile -tools DIR -pipeline FILE")
		os.Exit(2)
	}

	tools, err := loadTools(*toolsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load tool definitions: %v\n", err)
		os.Exit(1)
	}

	raw, err := os.ReadFile(*pipelinePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read pipeline document: %v\n", err)
		os.Exit(1)
	}

	pipeline, err := schema.DecodePipelineDocument(raw, tools)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid pipeline document: %v\n", err)
		os.Exit(1)
	}

	opts := compiler.Options{
		PipelineParameterSets: pipelineSets,
		Verbose:               *verbose,
	}
	if *verbose {
		opts.Observers = observer.NewManagerWithObservers(observer.NewConsoleObserver())
	}

	result, err := compiler.Compile(pipeline, tools, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compilation failed: %v\n", err)
		os.Exit(1)
	}

	out := map[string]interface{}{
		"compilationId": result.CompilationID,
		"workflow":      result.Schedule.Workflow,
		"deletions":     result.Schedule.Deletions,
		"dependencies":  result.Schedule.Dependencies,
		"outputs":       result.Schedule.Outputs,
		"isolatedTasks": result.IsolatedTasks,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		os.Exit(1)
	}
}

func loadTools(dir string) (*schema.Registry, error) {
	registry := schema.NewRegistry()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading tools directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		tool, err := schema.DecodeToolDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if err := registry.Add(name, tool); err != nil {
			return nil, fmt.Errorf("adding %s: %w", entry.Name(), err)
		}
	}

	return registry, nil
}

package schema

import "fmt"

// TaskArgument names a single (task, argument) pair, the unit the merger
// operates over.
type TaskArgument struct {
	Task     string `json:"task"`
	Argument string `json:"argument"`
}

// CommonNode declares that several tasks' arguments denote the same
// logical value and must collapse to a single option node during merge.
type CommonNode struct {
	ID    string         `json:"ID"`
	Tasks []TaskArgument `json:"tasks"`

	// LinkedExtension maps task -> argument -> required file extension,
	// used by the merger's filename-stub expansion (phase M4/M5).
	LinkedExtension map[string]map[string]string `json:"linkedExtension,omitempty"`

	DeleteFiles     bool             `json:"deleteFiles,omitempty"`
	EvaluateCommand *EvaluateCommand `json:"evaluateCommand,omitempty"`
}

// LinkedExtensionFor returns the required extension for (task, argument)
// under this common node, if declared.
func (c CommonNode) LinkedExtensionFor(task, argument string) (string, bool) {
	byArg, ok := c.LinkedExtension[task]
	if !ok {
		return "", false
	}
	ext, ok := byArg[argument]
	return ext, ok
}

// EvaluateCommand is a command template evaluated at runtime from other
// options' bound values, per spec section 4.5.
type EvaluateCommand struct {
	Argument string                  `json:"argument"`
	Template string                  `json:"template"`
	Sources  map[string]TaskArgument `json:"sources"`
}

// OriginatingEdge is a pipeline-declared edge from a source (task,
// argument) to a target (task, argument) input.
type OriginatingEdge struct {
	Source TaskArgument `json:"source"`
	Target TaskArgument `json:"target"`
}

// AdditionalNode aggregates several (task, argument) pairs into one
// option node without requiring any of them to already exist.
type AdditionalNode struct {
	ID    string         `json:"ID"`
	Tasks []TaskArgument `json:"tasks"`
}

// ParameterSetEntry is one overlay value within a named parameter set.
type ParameterSetEntry struct {
	ID       string   `json:"ID"`
	Argument string   `json:"argument,omitempty"`
	Values   []string `json:"values"`
}

// PipelineSchema is a pipeline definition, as the configuration parser (an
// external collaborator) decodes it from its pipeline definition file.
type PipelineSchema struct {
	// Tasks maps a pipeline-unique task name to the tool it invokes.
	Tasks map[string]string `json:"tasks"`

	Nodes              []CommonNode               `json:"nodes,omitempty"`
	OriginatingEdges   []OriginatingEdge          `json:"originatingEdges,omitempty"`
	GreedyTasks        []TaskArgument             `json:"greedyTasks,omitempty"`
	TasksOutputtingToStream []string              `json:"tasksOutputtingToStream,omitempty"`
	AdditionalNodes    []AdditionalNode           `json:"additionalNodes,omitempty"`
	UnassignedArguments []string                  `json:"unassignedArguments,omitempty"`

	// PipelineArguments maps a pipeline-level argument name to the ID of
	// the common node that argument resolves to, for parameter-set
	// binding in pipeline mode.
	PipelineArguments map[string]string `json:"pipelineArguments,omitempty"`

	EvaluateCommands []EvaluateCommand                `json:"evaluateCommands,omitempty"`
	ParameterSets    map[string][]ParameterSetEntry    `json:"parameterSets,omitempty"`
}

// Validate checks that every task references a declared tool and every
// common node names at least one (task, argument) pair.
func (p PipelineSchema) Validate(tools *Registry) error {
	for task, tool := range p.Tasks {
		if _, err := tools.Get(tool); err != nil {
			return fmt.Errorf("task %q: %w", task, err)
		}
	}
	seen := map[string]bool{}
	for _, node := range p.Nodes {
		if len(node.Tasks) == 0 {
			return fmt.Errorf("common node %q: %w", node.ID, ErrCommonNodeNoPairs)
		}
		if seen[node.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateCommonNodeID, node.ID)
		}
		seen[node.ID] = true
		for _, pair := range node.Tasks {
			if _, ok := p.Tasks[pair.Task]; !ok {
				return fmt.Errorf("common node %q: %w: %s", node.ID, ErrUnknownTaskInPipeline, pair.Task)
			}
		}
	}
	return nil
}

// ToolFor returns the tool bound to a task.
func (p PipelineSchema) ToolFor(task string) (string, error) {
	tool, ok := p.Tasks[task]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTaskInPipeline, task)
	}
	return tool, nil
}

// CommonNodeByID finds a declared common node by its ID.
func (p PipelineSchema) CommonNodeByID(id string) (CommonNode, bool) {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return CommonNode{}, false
}

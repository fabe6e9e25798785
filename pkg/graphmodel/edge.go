package graphmodel

import "github.com/pipeweave/graphc/pkg/ids"

// StreamPolicy controls whether a streamed output still appears on the
// emitted command line.
type StreamPolicy string

const (
	StreamDoNotInclude StreamPolicy = "do not include"
	StreamInclude      StreamPolicy = "include"
)

// Edge is a directed, attributed connection between a task node and an
// option-or-file node. Inputs point option-or-file -> task; outputs point
// task -> option-or-file. The Graph's NewInputEdge/NewOutputEdge
// constructors reject task<->task and option<->file combinations; AddEdge
// itself does not check the endpoints (CheckInvariants does).
type Edge struct {
	Source ids.ID
	Target ids.ID

	LongFormArgument     string
	ShortFormArgument    string
	IsInput              bool
	IsOutput             bool
	IsGreedy             bool
	IsStreaming          bool
	IsFilenameStub       bool
	IncludeOnCommandLine bool
	IfOutputIsStream     StreamPolicy
	IsOriginatingEdge    bool
	IsEvaluateCommand    bool
}

func endpointKindOf(g *Graph, id ids.ID) (Kind, bool) {
	n := g.GetNode(id)
	if n == nil {
		return "", false
	}
	return n.Kind, true
}

// NewInputEdge builds an edge from an option-or-file node into a task,
// rejecting any attempt to connect two task nodes or an option directly to
// a file node.
func (g *Graph) NewInputEdge(source, target ids.ID, longForm, shortForm string) (*Edge, error) {
	sk, ok := endpointKindOf(g, source)
	if !ok {
		return nil, ErrNodeNotFound
	}
	tk, ok := endpointKindOf(g, target)
	if !ok {
		return nil, ErrNodeNotFound
	}
	if sk == KindTask || tk != KindTask {
		return nil, ErrInvalidEdgeEndpoints
	}
	return &Edge{
		Source:               source,
		Target:                target,
		LongFormArgument:      longForm,
		ShortFormArgument:     shortForm,
		IsInput:               true,
		IncludeOnCommandLine:  true,
		IfOutputIsStream:      StreamInclude,
	}, nil
}

// NewOutputEdge builds an edge from a task to an option-or-file node.
func (g *Graph) NewOutputEdge(source, target ids.ID, longForm, shortForm string) (*Edge, error) {
	sk, ok := endpointKindOf(g, source)
	if !ok {
		return nil, ErrNodeNotFound
	}
	tk, ok := endpointKindOf(g, target)
	if !ok {
		return nil, ErrNodeNotFound
	}
	if sk != KindTask || tk == KindTask {
		return nil, ErrInvalidEdgeEndpoints
	}
	return &Edge{
		Source:               source,
		Target:                target,
		LongFormArgument:      longForm,
		ShortFormArgument:     shortForm,
		IsOutput:              true,
		IncludeOnCommandLine:  true,
		IfOutputIsStream:      StreamInclude,
	}, nil
}

package merger

import "errors"

var (
	ErrMissingOptionNode      = errors.New("common node pair has no option node in the graph")
	ErrNoMatchingFileSibling  = errors.New("no file-node sibling has the linked extension")
	ErrEdgeMismatch           = errors.New("edge does not connect to the expected file node")
	ErrUnknownCommonNodeTask  = errors.New("common node references a task that has no subgraph")
	ErrStructuralFileCount    = errors.New("option's file-node count does not match its stub/non-stub shape")
)

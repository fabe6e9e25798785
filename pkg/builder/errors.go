package builder

import "errors"

var (
	ErrUnknownTaskTool    = errors.New("task references a tool not present in the registry")
	ErrUnresolvedArgument = errors.New("referenced argument is not declared by the task's tool")
	ErrHiddenToolBound    = errors.New("task is bound to a tool marked hidden")
)

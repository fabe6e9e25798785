package schema

import "errors"

// Sentinel errors for tool/pipeline schema validation and decoding.
var (
	// Tool schema errors
	ErrUnknownTool          = errors.New("unknown tool")
	ErrUnknownArgument      = errors.New("argument not declared in tool schema")
	ErrInvalidExtensionList = errors.New("invalid allowed-extensions list")
	ErrMissingDescription   = errors.New("tool argument is missing a description")
	ErrStubMissingExtensions = errors.New("filename-stub argument declares no filename extensions")

	// Pipeline schema errors
	ErrUnknownTaskInPipeline = errors.New("pipeline references a task that is not declared")
	ErrCommonNodeNoPairs     = errors.New("common node declares no task/argument pairs")
	ErrDuplicateCommonNodeID = errors.New("duplicate common-node ID")

	// JSON Schema validation errors
	ErrSchemaValidationFailed = errors.New("configuration document failed schema validation")
	ErrInvalidJSON            = errors.New("configuration document is not valid JSON")
)

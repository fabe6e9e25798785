package config

import "errors"

// Sentinel errors for configuration validation and limit enforcement.
var (
	ErrInvalidMaxTasks                  = errors.New("invalid max tasks: must be non-negative")
	ErrInvalidMaxCommonNodes            = errors.New("invalid max common nodes: must be non-negative")
	ErrInvalidMaxOptionNodes            = errors.New("invalid max option nodes: must be non-negative")
	ErrInvalidMaxFilenameExtensions     = errors.New("invalid max filename extensions: must be non-negative")
	ErrInvalidMaxIterations             = errors.New("invalid max iterations: must be non-negative")
	ErrInvalidMaxParameterSets          = errors.New("invalid max parameter sets: must be non-negative")
	ErrInvalidMaxSetEntries             = errors.New("invalid max parameter set entries: must be non-negative")
	ErrInvalidMaxEvaluateCommandSources = errors.New("invalid max evaluate-command sources: must be non-negative")

	ErrTaskLimitExceeded              = errors.New("pipeline declares more tasks than the configured limit")
	ErrCommonNodeLimitExceeded        = errors.New("pipeline declares more common nodes than the configured limit")
	ErrFilenameExtensionLimitExceeded = errors.New("filename-stub argument declares more extensions than the configured limit")

	ErrConfigFileNotFound = errors.New("configuration file not found")
	ErrInvalidConfigFile  = errors.New("invalid configuration file format")
	ErrConfigParseFailed  = errors.New("failed to parse configuration file")
)

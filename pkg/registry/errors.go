package registry

import "errors"

var (
	ErrNameRequired = errors.New("registry: name is required")
	ErrIDRequired   = errors.New("registry: id is required")
	ErrDataRequired = errors.New("registry: data is required")
	ErrInvalidData  = errors.New("registry: invalid JSON data")
	ErrNotFound     = errors.New("registry: record not found")
)

package project

import "errors"

var (
	// ErrNotFound indicates the project doesn't exist in the registry.
	ErrNotFound = errors.New("project not found")
	// ErrValidation indicates invalid project input, such as a missing
	// required field or a nonexistent source directory.
	ErrValidation = errors.New("invalid project input")
)

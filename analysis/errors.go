package analysis

import "errors"

var (
	// ErrNoProject indicates an operation that needs a selected project
	// with a source path, and none was given.
	ErrNoProject = errors.New("no project selected")
	// ErrLocaleNotFound indicates the locale file does not exist in the
	// project's source directory.
	ErrLocaleNotFound = errors.New("locale file not found")
	// ErrKeyNotFound indicates the translation key does not exist in the
	// target locale file. Update operations edit values, never key sets.
	ErrKeyNotFound = errors.New("translation key not found")
)

package config

import "errors"

var (
	// ErrInvalidProject is returned when a project file is structurally valid
	// YAML but describes an unusable case base.
	ErrInvalidProject = errors.New("invalid project")

	// ErrNoSource is returned when a project names no case file.
	ErrNoSource = errors.New("project has no source")
)

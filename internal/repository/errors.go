package repository

import "errors"

// Common repository errors
var (
	// ErrProjectNotFound is returned when a project is not visible to the caller
	ErrProjectNotFound = errors.New("project not found")

	// ErrTaskNotFound is returned when a task is not visible to the caller
	ErrTaskNotFound = errors.New("task not found")
)

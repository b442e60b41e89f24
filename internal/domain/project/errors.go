package project

import "errors"

var (
	// ErrProjectNotFound indicates no record resolves from the query.
	ErrProjectNotFound = errors.New("project not found")
	// ErrNotInitialized indicates the engine has not loaded or ingested yet.
	ErrNotInitialized = errors.New("project data not initialized")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
)

// Package common defines sentinel errors shared by the cache layers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("id already exists")

	// Validation errors for locally created records.
	ErrorInvalidRecord = errors.New("invalid record")
	ErrorUnknownKind   = errors.New("unknown record kind")
	ErrorMissingOrigin = errors.New("origin planet is not cached")

	// Lifecycle errors.
	ErrorStoreClosed = errors.New("store is closed")
)

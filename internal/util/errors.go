package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidDateRange indicates a calendar range that cannot be seeded
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrSchemaMismatch indicates the database was written by a newer schema
	ErrSchemaMismatch = errors.New("schema version mismatch")
)

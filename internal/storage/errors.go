package storage

import "errors"

// Error taxonomy surfaced to callers. Callers match with errors.Is.
var (
	// ErrInvalidRecord means caller-supplied data violates a field
	// invariant. It is raised before any durable mutation is attempted.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrNotFound means the referenced identifier does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrStorageUnavailable means the durable medium could not be
	// opened, written or read. It is the only error callers may retry.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

package reconcile

import "errors"

var (
	// ErrValidation marks malformed input, such as a material name that
	// normalizes to nothing.
	ErrValidation = errors.New("validation failed")

	// ErrCatalogUnavailable marks a failure to read the warehouse catalog.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrStoreWrite marks a mapping that could not be persisted.
	ErrStoreWrite = errors.New("mapping store write failed")

	// ErrNotFound marks a reference to an unknown warehouse entry or material.
	ErrNotFound = errors.New("not found")

	// ErrMappingNotFound is returned by MappingStore.Lookup when no mapping exists.
	ErrMappingNotFound = errors.New("mapping not found")

	// ErrSessionDone is returned when a finished session is run again.
	ErrSessionDone = errors.New("session already reconciled")

	// ErrTimeout is returned when the caller's deadline expires during a batch.
	// Partial results are discarded.
	ErrTimeout = errors.New("reconciliation timed out")
)

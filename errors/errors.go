package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrValidation       = fmt.Errorf("validation failed")
	ErrStoreUnavailable = fmt.Errorf("record store unavailable")
	// ErrNotFoundPostWrite is reported when a record written a moment ago cannot be read back.
	// It matches ErrStoreUnavailable through errors.Is.
	ErrNotFoundPostWrite = fmt.Errorf("%w: record missing after write", ErrStoreUnavailable)
	ErrUnknownBackend    = fmt.Errorf("unknown store backend")
)

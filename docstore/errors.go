package docstore

import "errors"

// Common document store errors.
var (
	// ErrNotFound is returned when no document exists for a key.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned when a write's expected revision no longer
	// matches the stored document. The caller may re-read and retry; the
	// store never retries on its own.
	ErrConflict = errors.New("document revision conflict")

	// ErrUnavailable is returned when the backing store did not respond.
	// It is distinct from ErrNotFound so a transient outage is never
	// mistaken for an empty document.
	ErrUnavailable = errors.New("document store unavailable")
)

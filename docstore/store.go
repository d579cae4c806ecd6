// Package docstore provides revisioned single-document storage. The roster
// engine depends only on the Store interface; the NATS JetStream KV adapter
// is the production backend and Memory serves tests and offline runs.
package docstore

import "context"

// Document is a stored value together with the revision it was read at.
type Document struct {
	Value    []byte
	Revision uint64
}

// Store is a key-addressed document store with optimistic concurrency.
//
// Put with expectedRevision == 0 creates the document and fails with
// ErrConflict if it already exists. Any other expectedRevision must match
// the current revision of the document or the write fails with ErrConflict.
type Store interface {
	// Get returns the current document for key, or ErrNotFound.
	Get(ctx context.Context, key string) (Document, error)

	// Put writes value at key if the document's revision still equals
	// expectedRevision, returning the new revision.
	Put(ctx context.Context, key string, value []byte, expectedRevision uint64) (uint64, error)
}

package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
)

// DefaultBucket is the KV bucket holding roster documents.
const DefaultBucket = "RECOVERY_ROSTERS"

// KV is a Store backed by a NATS JetStream key-value bucket. JetStream
// revisions are used directly as document revisions.
type KV struct {
	kv jetstream.KeyValue
}

// NewKV binds to the named KV bucket, creating it if it does not exist.
func NewKV(ctx context.Context, js jetstream.JetStream, bucket string) (*KV, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}

	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		// Bucket doesn't exist, create it
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      bucket,
			Description: "Recovery token roster storage",
			History:     5, // Keep last 5 revisions
		})
		if err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return &KV{kv: kv}, nil
}

// Get returns the current document at key.
func (s *KV) Get(ctx context.Context, key string) (Document, error) {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("%w: get %s: %v", ErrUnavailable, key, err)
	}

	return Document{
		Value:    entry.Value(),
		Revision: entry.Revision(),
	}, nil
}

// Put writes value at key guarded by expectedRevision.
func (s *KV) Put(ctx context.Context, key string, value []byte, expectedRevision uint64) (uint64, error) {
	var (
		rev uint64
		err error
	)
	if expectedRevision == 0 {
		rev, err = s.kv.Create(ctx, key, value)
	} else {
		rev, err = s.kv.Update(ctx, key, value, expectedRevision)
	}
	if err != nil {
		if isRevisionMismatch(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("%w: put %s: %v", ErrUnavailable, key, err)
	}
	return rev, nil
}

// isRevisionMismatch reports whether an error indicates the document changed
// since it was read. JetStream surfaces this as a key-exists error on Create
// and a wrong-last-sequence stream error on Update.
func isRevisionMismatch(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "wrong last sequence")
}

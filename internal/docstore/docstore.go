// Package docstore provides the persistence collaborator shared by every
// domain: a keyed document store with optimistic revision checks, available
// over interchangeable memory, sqlite and redis drivers.
package docstore

import (
	"context"

	"github.com/bytedance/sonic"
)

// Document is a stored entity payload together with its revision. Rev starts
// at 1 on insert and increments on every replace; ReplaceIf callers use it to
// serialize read-check-write sequences on the same document.
type Document struct {
	Key  string
	Rev  int64
	Data []byte
}

// Predicate filters documents during find and delete operations.
type Predicate func(Document) bool

// MatchAll accepts every document.
func MatchAll(Document) bool { return true }

// Store is the abstract persistence contract. Implementations must keep
// per-document operations atomic; cross-document ordering is the caller's
// concern.
type Store interface {
	Get(ctx context.Context, collection, key string) (Document, error)
	FindOne(ctx context.Context, collection string, pred Predicate) (Document, error)
	FindMany(ctx context.Context, collection string, pred Predicate) ([]Document, error)
	Insert(ctx context.Context, collection, key string, data []byte) (Document, error)
	Replace(ctx context.Context, collection, key string, data []byte) (Document, error)
	// ReplaceIf applies the write only when the stored revision still equals
	// expectedRev, returning a conflict error otherwise.
	ReplaceIf(ctx context.Context, collection, key string, data []byte, expectedRev int64) (Document, error)
	Delete(ctx context.Context, collection string, pred Predicate) (int64, error)
	Close(ctx context.Context) error
}

// Encode serializes an entity for storage.
func Encode(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// Decode deserializes a stored document payload into the provided entity.
func Decode(doc Document, v any) error {
	return sonic.Unmarshal(doc.Data, v)
}

// Package kvstore provides key-value persistence for workspace documents.
//
// The Store interface is deliberately tiny (get/put/delete over opaque keys)
// so tests can substitute the in-memory implementation. Writes are
// last-write-wins; there is no optimistic concurrency control.
package kvstore

import "context"

// Store is the persistence abstraction used for workspace memory and OAuth
// tokens.
type Store interface {
	// Get returns the value for key. The boolean reports whether the key
	// exists; a missing key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key, replacing any existing value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}

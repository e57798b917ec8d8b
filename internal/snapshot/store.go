// Package snapshot keeps game state values around for undo and for
// speculative branches. State values are immutable, so storing one is
// just keeping a reference.
package snapshot

import "context"

// Store holds values under generated ids.
type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	Delete(ctx context.Context, id string) error
	NewID() string
}

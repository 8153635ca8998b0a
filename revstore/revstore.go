package revstore

import (
	"context"
)

// RevStore abstracts where snapshot revisions live.
// Use Local (default) for in-process revisions, or Redis to share them
// across replicas and survive restarts.
type RevStore interface {
	// Current returns the latest known revision; missing => 0.
	Current(ctx context.Context, storageKey string) (uint64, error)
	// Bump atomically increments and returns the new revision.
	Bump(ctx context.Context, storageKey string) (uint64, error)
	// Advance raises the revision to at least rev (set-if-greater).
	// Used when a durable snapshot is ahead of the store, e.g. after a
	// process restart with in-process revisions.
	Advance(ctx context.Context, storageKey string, rev uint64) error
	// Close releases resources (no-op ok).
	Close(context.Context) error
}

package fallcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/fallcache/codec"
	pr "github.com/unkn0wn-root/fallcache/provider"
	rev "github.com/unkn0wn-root/fallcache/revstore"
)

// SetCostFunc computes the provider cost of a write. records is the
// number of records framed in raw (1 for per-record entries).
type SetCostFunc func(key string, raw []byte, isSnapshot bool, records int) int64

// Result is one observed value of a Load stream: a record set or a
// failure, never both.
type Result[R any] struct {
	Records []R
	Err     error
}

// Source fetches the authoritative record set from an external source.
// A single attempt per call; no retries, backoff, or timeouts are added
// by the store. FetchAll must be a pure read.
type Source[R any] interface {
	FetchAll(ctx context.Context) ([]R, error)
}

// Cache is durable storage of the last successfully fetched record set,
// addressable by record identifier. Implementations must be safe for
// concurrent use; WriteAll and Clear are serialized internally.
type Cache[R any] interface {
	// ReadAll returns the cached record set; missing snapshot => empty slice.
	ReadAll(ctx context.Context) ([]R, error)
	// ReadOne returns the cached record for id; absence is (zero, false, nil).
	ReadOne(ctx context.Context, id string) (R, bool, error)
	// WriteAll replaces the snapshot wholesale; duplicate ids: last wins.
	WriteAll(ctx context.Context, records []R) error
	// Clear removes the snapshot. Explicit external deletion; the merge
	// policy never calls it.
	Clear(ctx context.Context) error
	// Revision reports the current snapshot revision (0 before any write).
	Revision(ctx context.Context) (uint64, error)
	Close(ctx context.Context) error
}

// Store is the merge policy over a Source and a Cache: prefer fresh
// remote data, fall back to the cache on remote failure, and fail only
// when both are empty.
type Store[R any] interface {
	// Load emits at most two results: the cached snapshot first when
	// EmitCached is set and the cache is non-empty, then the final value
	// (fresh, cached fallback, or a *NoDataError). The channel is closed
	// after the final result.
	Load(ctx context.Context) <-chan Result[R]
	// Fetch returns the final value only, with no first emission.
	Fetch(ctx context.Context) ([]R, error)
	// Lookup reads a single record from the cache. It never contacts the
	// source.
	Lookup(ctx context.Context, id string) (R, bool, error)
	Close(ctx context.Context) error
}

// CacheOptions tune the snapshot cache.
// Namespace, Provider, Codec and Key are required; others have defaults.
type CacheOptions[R any] struct {
	// Required
	Namespace string         // logical namespace to avoid collisions, e.g. "user", "task"
	Provider  pr.Provider    // byte store the snapshot lives in
	Codec     c.Codec[R]     // (de)serializes records
	Key       func(R) string // stable, non-empty identifier per record

	Logger         Logger        // if nil, NopLogger
	Hooks          Hooks         // if nil, NopHooks
	RevStore       rev.RevStore  // nil => revstore.NewLocal() (in-process)
	SnapshotTTL    time.Duration // 0 => no expiry
	ComputeSetCost SetCostFunc   // default 1
}

// NewCache builds the snapshot cache. Use it directly for cache-only
// access, or pass it to New as the Store's local side.
func NewCache[R any](opts CacheOptions[R]) (Cache[R], error) {
	return newSnapshotCache[R](opts)
}

// Options tune the Store.
type Options[R any] struct {
	// Required
	Cache  Cache[R]
	Source Source[R]

	// EmitCached emits the cached snapshot (when non-empty) before the
	// remote attempt. Off by default: consumers that never want to see
	// possibly-stale data leave it unset.
	EmitCached bool

	Logger Logger // if nil, NopLogger
	Hooks  Hooks  // if nil, NopHooks
}

func New[R any](opts Options[R]) (Store[R], error) {
	return newStore[R](opts)
}

package fallcache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; the store and the
// cache call them on hot paths.
type Hooks interface {
	// The remote source failed; err is the normalized *RemoteError.
	RemoteFailed(err error)

	// The cached snapshot was emitted before the remote attempt (EmitCached).
	ServedCached(count int)

	// The remote failed and the cached snapshot was served as the final value.
	ServedStale(count int)

	// Persisting a successful fetch failed; the fresh result was still returned.
	CacheWriteError(err error)

	// The snapshot was deleted by the cache on read.
	// reason ∈ {"corrupt", "stale", "value_decode"}
	SnapshotSelfHeal(storageKey, reason string)

	// A per-record entry was deleted by the cache on read.
	// reason ∈ {"corrupt", "rev_mismatch", "value_decode"}
	RecordSelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string, isSnapshot bool)

	// RevStore errors. op ∈ {"current", "bump", "advance"}.
	RevError(op string, err error)

	// Both the revision bump and the snapshot delete failed during Clear
	// (likely backend outage).
	ClearOutage(namespace string, bumpErr, delErr error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) RemoteFailed(error)               {}
func (NopHooks) ServedCached(int)                 {}
func (NopHooks) ServedStale(int)                  {}
func (NopHooks) CacheWriteError(error)            {}
func (NopHooks) SnapshotSelfHeal(string, string)  {}
func (NopHooks) RecordSelfHeal(string, string)    {}
func (NopHooks) ProviderSetRejected(string, bool) {}
func (NopHooks) RevError(string, error)           {}
func (NopHooks) ClearOutage(string, error, error) {}

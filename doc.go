// Package fallcache implements an offline-first fetch-and-cache store.
// A Store composes a remote Source (the authority) with a durable Cache
// (the last-known-good record set) under a fixed merge policy: prefer
// fresh remote data; fall back to the cache when the remote is
// unavailable; fail only when both are empty.
//
// Components:
//   - Source[R]: fetches the authoritative record set (single attempt,
//     no retries or backoff).
//   - Cache[R]: snapshot storage of the last successful fetch over a
//     pluggable byte Provider (memory, SQLite, Redis, BigCache,
//     Ristretto) and a Codec[R].
//   - Store[R]: the merge policy. Load emits at most two results on a
//     channel (optional cached-first, then final); Fetch returns the
//     final value only.
//
// Keys:
//
//	snap:<ns>      - the full snapshot (records framed with a revision)
//	rec:<ns>:<id>  - per-record entries for O(1) ReadOne
//
// Every WriteAll bumps a per-namespace revision; per-record entries are
// validated against the current revision on read and self-heal deleted
// when a later snapshot has replaced them.
package fallcache

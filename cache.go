package fallcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	c "github.com/unkn0wn-root/fallcache/codec"
	"github.com/unkn0wn-root/fallcache/internal/wire"
	pr "github.com/unkn0wn-root/fallcache/provider"
	rev "github.com/unkn0wn-root/fallcache/revstore"
)

// maxIDLen bounds record identifiers to what the snapshot frame's u16
// length prefix can carry.
const maxIDLen = 0xFFFF

type snapshotCache[R any] struct {
	ns       string
	provider pr.Provider
	codec    c.Codec[R]
	keyOf    func(R) string
	log      Logger
	hooks    Hooks
	rev      rev.RevStore
	ttl      time.Duration
	cost     SetCostFunc

	// serializes WriteAll/Clear; single-writer discipline for the snapshot
	mu sync.Mutex
}

func newSnapshotCache[R any](opts CacheOptions[R]) (*snapshotCache[R], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("fallcache: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("fallcache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("fallcache: namespace is required")
	}
	if opts.Key == nil {
		return nil, fmt.Errorf("fallcache: key func is required")
	}

	sc := &snapshotCache[R]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		keyOf:    opts.Key,
		ttl:      opts.SnapshotTTL,
	}

	// defaults
	sc.log = coalesce[Logger](opts.Logger, NopLogger{})
	sc.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	if opts.ComputeSetCost != nil {
		sc.cost = opts.ComputeSetCost
	} else {
		sc.cost = func(_ string, _ []byte, _ bool, _ int) int64 { return 1 }
	}
	if opts.RevStore != nil {
		sc.rev = opts.RevStore
	} else {
		sc.rev = rev.NewLocal()
	}

	return sc, nil
}

func (s *snapshotCache[R]) Close(ctx context.Context) error {
	// close rev store first (best effort)
	if s.rev != nil {
		_ = s.rev.Close(ctx)
	}
	if s.provider != nil {
		return s.provider.Close(ctx)
	}
	return nil
}

// WriteAll replaces the snapshot wholesale under a new revision and warms
// per-record entries best-effort. Only successfully fetched records ever
// reach this path; errors are never persisted.
func (s *snapshotCache[R]) WriteAll(ctx context.Context, records []R) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// upsert by identifier: last occurrence wins, first position kept
	items := make([]wire.Item, 0, len(records))
	pos := make(map[string]int, len(records))
	for _, r := range records {
		id := s.keyOf(r)
		if id == "" {
			return fmt.Errorf("fallcache: record with empty identifier")
		}
		if len(id) > maxIDLen {
			return fmt.Errorf("fallcache: record identifier exceeds %d bytes", maxIDLen)
		}
		payload, err := s.codec.Encode(r)
		if err != nil {
			return fmt.Errorf("fallcache: encode record %q: %w", id, err)
		}
		if i, ok := pos[id]; ok {
			items[i].Payload = payload
			continue
		}
		pos[id] = len(items)
		items = append(items, wire.Item{ID: id, Payload: payload})
	}

	sk := s.snapKey()
	rv, err := s.rev.Bump(ctx, sk)
	if err != nil {
		s.hooks.RevError("bump", err)
		return fmt.Errorf("fallcache: revision bump: %w", err)
	}

	blob := wire.EncodeSnapshot(rv, items)
	ok, err := s.provider.Set(ctx, sk, blob, s.cost(sk, blob, true, len(items)), s.ttl)
	if err != nil {
		return err
	}
	if !ok {
		// snapshot rejected under pressure; skip warmup so per-record
		// entries never outrun the stored snapshot
		s.hooks.ProviderSetRejected(sk, true)
		s.log.Warn("snapshot write rejected by provider", Fields{"ns": s.ns, "records": len(items)})
		return nil
	}

	for _, it := range items {
		rk := s.recKey(it.ID)
		rb := wire.EncodeRecord(rv, it.Payload)
		wok, werr := s.provider.Set(ctx, rk, rb, s.cost(rk, rb, false, 1), s.ttl)
		if werr != nil {
			s.log.Warn("record warmup failed", Fields{"id": it.ID, "err": werr})
			continue
		}
		if !wok {
			s.hooks.ProviderSetRejected(rk, false)
		}
	}
	return nil
}

func (s *snapshotCache[R]) ReadAll(ctx context.Context) ([]R, error) {
	_, items, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]R, 0, len(items))
	for _, it := range items {
		v, derr := s.codec.Decode(it.Payload)
		if derr != nil {
			sk := s.snapKey()
			_ = s.provider.Del(ctx, sk) // self-heal corrupt member
			s.hooks.SnapshotSelfHeal(sk, "value_decode")
			return []R{}, nil
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *snapshotCache[R]) ReadOne(ctx context.Context, id string) (R, bool, error) {
	var zero R
	rk := s.recKey(id)
	raw, ok, err := s.provider.Get(ctx, rk)
	if err != nil {
		return zero, false, err
	}
	if ok {
		rv, payload, derr := wire.DecodeRecord(raw)
		switch {
		case derr != nil:
			_ = s.provider.Del(ctx, rk)
			s.hooks.RecordSelfHeal(rk, "corrupt")
		default:
			cur, cerr := s.rev.Current(ctx, s.snapKey())
			if cerr != nil {
				// cannot validate; the snapshot below is authoritative
				s.hooks.RevError("current", cerr)
			} else if rv != cur {
				// left behind by a replacing WriteAll or a Clear
				_ = s.provider.Del(ctx, rk)
				s.hooks.RecordSelfHeal(rk, "rev_mismatch")
			} else {
				v, verr := s.codec.Decode(payload)
				if verr == nil {
					return v, true, nil
				}
				_ = s.provider.Del(ctx, rk)
				s.hooks.RecordSelfHeal(rk, "value_decode")
			}
		}
	}

	// fall back to the snapshot and warm the entry back on a hit
	rv, items, err := s.loadSnapshot(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, it := range items {
		if it.ID != id {
			continue
		}
		v, derr := s.codec.Decode(it.Payload)
		if derr != nil {
			return zero, false, nil
		}
		rb := wire.EncodeRecord(rv, it.Payload)
		if wok, werr := s.provider.Set(ctx, rk, rb, s.cost(rk, rb, false, 1), s.ttl); werr == nil && !wok {
			s.hooks.ProviderSetRejected(rk, false)
		}
		return v, true, nil
	}
	return zero, false, nil
}

// Clear bumps the revision and deletes the snapshot. Per-record entries
// are not touched; the bumped revision invalidates them lazily on read.
func (s *snapshotCache[R]) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sk := s.snapKey()
	_, bumpErr := s.rev.Bump(ctx, sk)
	if bumpErr != nil {
		s.hooks.RevError("bump", bumpErr)
	}
	delErr := s.provider.Del(ctx, sk)
	if bumpErr != nil && delErr != nil {
		s.hooks.ClearOutage(s.ns, bumpErr, delErr)
		return &ClearError{Namespace: s.ns, BumpErr: bumpErr, DelErr: delErr}
	}
	s.log.Debug("cleared snapshot (bumped rev + deleted)", Fields{"ns": s.ns})
	return nil
}

func (s *snapshotCache[R]) Revision(ctx context.Context) (uint64, error) {
	return s.rev.Current(ctx, s.snapKey())
}

// loadSnapshot reads, validates, and (when the durable copy is ahead of
// the rev store, e.g. after a process restart) advances the revision.
func (s *snapshotCache[R]) loadSnapshot(ctx context.Context) (uint64, []wire.Item, error) {
	sk := s.snapKey()
	raw, ok, err := s.provider.Get(ctx, sk)
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		return 0, nil, nil
	}
	rv, items, derr := wire.DecodeSnapshot(raw)
	if derr != nil {
		_ = s.provider.Del(ctx, sk) // self-heal corrupt
		s.hooks.SnapshotSelfHeal(sk, "corrupt")
		return 0, nil, nil
	}
	cur, cerr := s.rev.Current(ctx, sk)
	if cerr != nil {
		// conservative: serve the durable copy we have
		s.hooks.RevError("current", cerr)
		return rv, items, nil
	}
	if cur > rv {
		// a later write happened; this copy is stale
		_ = s.provider.Del(ctx, sk)
		s.hooks.SnapshotSelfHeal(sk, "stale")
		return 0, nil, nil
	}
	if rv > cur {
		if aerr := s.rev.Advance(ctx, sk, rv); aerr != nil {
			s.hooks.RevError("advance", aerr)
		}
	}
	return rv, items, nil
}

func (s *snapshotCache[R]) snapKey() string { return "snap:" + s.ns }

func (s *snapshotCache[R]) recKey(id string) string {
	// isolate by namespace
	return "rec:" + s.ns + ":" + id
}

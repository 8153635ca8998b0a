package fallcache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/fallcache/provider/memory"
)

type fakeSource struct {
	recs  []task
	err   error
	calls int
}

func (f *fakeSource) FetchAll(context.Context) ([]task, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.recs, nil
}

type failWriteCache struct {
	Cache[task]
	writeErr error
}

func (c *failWriteCache) WriteAll(context.Context, []task) error { return c.writeErr }

type recHooks struct {
	NopHooks
	mu     sync.Mutex
	events []string
}

func (h *recHooks) record(e string) {
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
}

func (h *recHooks) RemoteFailed(error)    { h.record("remote_failed") }
func (h *recHooks) ServedCached(int)      { h.record("served_cached") }
func (h *recHooks) ServedStale(int)       { h.record("served_stale") }
func (h *recHooks) CacheWriteError(error) { h.record("cache_write_error") }

func (h *recHooks) has(e string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, got := range h.events {
		if got == e {
			return true
		}
	}
	return false
}

func newTestStore(t *testing.T, cc Cache[task], src Source[task], emitCached bool, hooks Hooks) Store[task] {
	t.Helper()
	st, err := New[task](Options[task]{
		Cache:      cc,
		Source:     src,
		EmitCached: emitCached,
		Hooks:      hooks,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return st
}

func drain[R any](ch <-chan Result[R]) []Result[R] {
	var out []Result[R]
	for r := range ch {
		out = append(out, r)
	}
	return out
}

// Scenario: cache empty, remote succeeds. The empty cache is never
// emitted; the single emission is the fresh set, which is persisted.
func TestLoadFreshOnEmptyCache(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, "task", memory.New(), nil)
	src := &fakeSource{recs: []task{{ID: "1", Name: "Ann"}}}
	st := newTestStore(t, cc, src, true, nil)
	defer st.Close(ctx)

	got := drain(st.Load(ctx))
	if len(got) != 1 {
		t.Fatalf("expected 1 emission, got %d", len(got))
	}
	if got[0].Err != nil || len(got[0].Records) != 1 || got[0].Records[0].Name != "Ann" {
		t.Fatalf("unexpected final result: %+v", got[0])
	}

	if r, ok, err := cc.ReadOne(ctx, "1"); err != nil || !ok || r.Name != "Ann" {
		t.Fatalf("fetch result not persisted: ok=%v err=%v r=%+v", ok, err, r)
	}
}

// Scenario: cache holds the old record, remote returns the updated one.
// The consumer sees cached-then-fresh, and the cache ends up with only
// the updated record.
func TestLoadEmitsCachedThenFresh(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, "task", memory.New(), nil)
	if err := cc.WriteAll(ctx, []task{{ID: "1", Name: "Ann"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	src := &fakeSource{recs: []task{{ID: "1", Name: "Ann2"}}}
	st := newTestStore(t, cc, src, true, nil)
	defer st.Close(ctx)

	got := drain(st.Load(ctx))
	if len(got) != 2 {
		t.Fatalf("expected 2 emissions, got %d", len(got))
	}
	if got[0].Records[0].Name != "Ann" || got[1].Records[0].Name != "Ann2" {
		t.Fatalf("wrong emission order: %+v", got)
	}

	all, err := cc.ReadAll(ctx)
	if err != nil || len(all) != 1 || all[0].Name != "Ann2" {
		t.Fatalf("cache not replaced: err=%v all=%v", err, all)
	}
}

// Scenario: remote fails with a warm cache. The final value is the cached
// set and no error surfaces.
func TestLoadFallsBackToCache(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, "task", memory.New(), nil)
	want := task{ID: "1", Name: "Ann"}
	if err := cc.WriteAll(ctx, []task{want}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	hooks := &recHooks{}
	src := &fakeSource{err: errors.New("connection refused")}
	st := newTestStore(t, cc, src, false, hooks)
	defer st.Close(ctx)

	got := drain(st.Load(ctx))
	if len(got) != 1 {
		t.Fatalf("expected 1 emission, got %d", len(got))
	}
	if got[0].Err != nil || len(got[0].Records) != 1 || got[0].Records[0] != want {
		t.Fatalf("fallback result wrong: %+v", got[0])
	}
	if !hooks.has("remote_failed") || !hooks.has("served_stale") {
		t.Fatalf("missing hooks, got %v", hooks.events)
	}
}

// Scenario: remote fails after the first cached emission. The cached
// emission is not retracted; the consumer sees the cached set twice with
// no error on either.
func TestLoadCachedEmissionSurvivesRemoteFailure(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, "task", memory.New(), nil)
	want := task{ID: "1", Name: "Ann"}
	if err := cc.WriteAll(ctx, []task{want}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	src := &fakeSource{err: errors.New("connection refused")}
	st := newTestStore(t, cc, src, true, nil)
	defer st.Close(ctx)

	got := drain(st.Load(ctx))
	if len(got) != 2 {
		t.Fatalf("expected 2 emissions, got %d", len(got))
	}
	for i, r := range got {
		if r.Err != nil || len(r.Records) != 1 || r.Records[0] != want {
			t.Fatalf("emission %d wrong: %+v", i, r)
		}
	}
}

// Scenario: remote fails and the cache is empty. The only emission is the
// no-data failure, which unwraps to the remote cause.
func TestLoadNoData(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, "task", memory.New(), nil)
	srcErr := errors.New("boom")
	src := &fakeSource{err: srcErr}
	st := newTestStore(t, cc, src, true, nil)
	defer st.Close(ctx)

	got := drain(st.Load(ctx))
	if len(got) != 1 {
		t.Fatalf("expected 1 emission, got %d", len(got))
	}
	if got[0].Err == nil || got[0].Records != nil {
		t.Fatalf("expected failure emission, got %+v", got[0])
	}

	var nde *NoDataError
	if !errors.As(got[0].Err, &nde) {
		t.Fatalf("expected *NoDataError, got %T", got[0].Err)
	}
	var re *RemoteError
	if !errors.As(got[0].Err, &re) {
		t.Fatalf("expected *RemoteError in chain")
	}
	if !errors.Is(got[0].Err, srcErr) {
		t.Fatalf("original cause lost from chain")
	}
}

// An empty remote result is success, not failure: it replaces the cache
// with the empty set.
func TestEmptyRemoteSuccessReplacesCache(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, "task", memory.New(), nil)
	if err := cc.WriteAll(ctx, []task{{ID: "1", Name: "Ann"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	src := &fakeSource{recs: []task{}}
	st := newTestStore(t, cc, src, false, nil)
	defer st.Close(ctx)

	recs, err := st.Fetch(ctx)
	if err != nil || len(recs) != 0 {
		t.Fatalf("Fetch: err=%v recs=%v", err, recs)
	}
	all, err := cc.ReadAll(ctx)
	if err != nil || len(all) != 0 {
		t.Fatalf("cache not emptied: err=%v all=%v", err, all)
	}
}

func TestFetchSkipsFirstEmission(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, "task", memory.New(), nil)
	if err := cc.WriteAll(ctx, []task{{ID: "1", Name: "Ann"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	src := &fakeSource{recs: []task{{ID: "1", Name: "Ann2"}}}
	st := newTestStore(t, cc, src, true, nil) // EmitCached applies to Load only
	defer st.Close(ctx)

	recs, err := st.Fetch(ctx)
	if err != nil || len(recs) != 1 || recs[0].Name != "Ann2" {
		t.Fatalf("Fetch: err=%v recs=%v", err, recs)
	}
}

func TestCacheWriteFailureStillReturnsFresh(t *testing.T) {
	ctx := context.Background()
	inner := newTestCache(t, "task", memory.New(), nil)
	cc := &failWriteCache{Cache: inner, writeErr: errors.New("disk full")}
	hooks := &recHooks{}
	src := &fakeSource{recs: []task{{ID: "1", Name: "Ann"}}}
	st := newTestStore(t, cc, src, false, hooks)
	defer st.Close(ctx)

	recs, err := st.Fetch(ctx)
	if err != nil || len(recs) != 1 {
		t.Fatalf("fresh result lost on cache-write failure: err=%v recs=%v", err, recs)
	}
	if !hooks.has("cache_write_error") {
		t.Fatalf("missing cache_write_error hook, got %v", hooks.events)
	}
}

func TestLookupReadsCacheOnly(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, "task", memory.New(), nil)
	want := task{ID: "1", Name: "Ann"}
	if err := cc.WriteAll(ctx, []task{want}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	src := &fakeSource{err: errors.New("down")}
	st := newTestStore(t, cc, src, false, nil)
	defer st.Close(ctx)

	got, ok, err := st.Lookup(ctx, "1")
	if err != nil || !ok || got != want {
		t.Fatalf("Lookup: ok=%v err=%v got=%+v", ok, err, got)
	}
	if src.calls != 0 {
		t.Fatalf("Lookup must not contact the source (calls=%d)", src.calls)
	}
}

package fallcache

import (
	"context"
	"fmt"
)

type store[R any] struct {
	cache      Cache[R]
	source     Source[R]
	emitCached bool
	log        Logger
	hooks      Hooks
}

func newStore[R any](opts Options[R]) (*store[R], error) {
	if opts.Cache == nil {
		return nil, fmt.Errorf("fallcache: cache is required")
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("fallcache: source is required")
	}
	s := &store[R]{
		cache:      opts.Cache,
		source:     opts.Source,
		emitCached: opts.EmitCached,
	}
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	return s, nil
}

// Load runs the merge policy once. The remote call is the only
// suspension point; the returned channel is buffered, so the goroutine
// never blocks on a slow consumer.
func (s *store[R]) Load(ctx context.Context) <-chan Result[R] {
	out := make(chan Result[R], 2)
	go func() {
		defer close(out)
		if s.emitCached {
			if recs, err := s.cache.ReadAll(ctx); err != nil {
				s.log.Warn("cache read before remote attempt failed", Fields{"err": err})
			} else if len(recs) > 0 {
				s.hooks.ServedCached(len(recs))
				out <- Result[R]{Records: recs}
			}
		}
		recs, err := s.resolve(ctx)
		out <- Result[R]{Records: recs, Err: err}
	}()
	return out
}

func (s *store[R]) Fetch(ctx context.Context) ([]R, error) {
	return s.resolve(ctx)
}

func (s *store[R]) Lookup(ctx context.Context, id string) (R, bool, error) {
	return s.cache.ReadOne(ctx, id)
}

func (s *store[R]) Close(ctx context.Context) error {
	return s.cache.Close(ctx)
}

// resolve produces the final value: fresh remote data (persisted first),
// the cached fallback, or a *NoDataError when both are empty. An empty
// remote result is success and replaces the snapshot with an empty set.
func (s *store[R]) resolve(ctx context.Context) ([]R, error) {
	recs, err := s.source.FetchAll(ctx)
	if err == nil {
		if werr := s.cache.WriteAll(ctx, recs); werr != nil {
			// persistence is best-effort; the fresh result still wins
			s.hooks.CacheWriteError(werr)
			s.log.Warn("cache write after fetch failed", Fields{"err": werr})
		}
		return recs, nil
	}

	rerr := &RemoteError{Cause: err}
	s.hooks.RemoteFailed(rerr)
	s.log.Warn("remote fetch failed; falling back to cache", Fields{"err": err})

	cached, cerr := s.cache.ReadAll(ctx)
	if cerr != nil {
		s.log.Error("cache fallback read failed", Fields{"err": cerr})
		return nil, &NoDataError{Remote: rerr}
	}
	if len(cached) > 0 {
		s.hooks.ServedStale(len(cached))
		return cached, nil
	}
	return nil, &NoDataError{Remote: rerr}
}

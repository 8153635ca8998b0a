// Package asynchook decouples hook sinks from the store's hot paths:
// events are queued to a small worker pool and dropped when the queue is
// full, so a slow sink can never stall a Load.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    SelfHealEvery: 10, // sample logs: ~every 10th self-heal
//	})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	store, _ := fallcache.New[User](fallcache.Options[User]{
//	    Cache:  cache,
//	    Source: src,
//	    Hooks:  hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/fallcache"
)

type Hooks struct {
	inner fallcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ fallcache.Hooks = (*Hooks)(nil)

func New(inner fallcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) RemoteFailed(err error)    { h.try(func() { h.inner.RemoteFailed(err) }) }
func (h *Hooks) ServedCached(n int)        { h.try(func() { h.inner.ServedCached(n) }) }
func (h *Hooks) ServedStale(n int)         { h.try(func() { h.inner.ServedStale(n) }) }
func (h *Hooks) CacheWriteError(err error) { h.try(func() { h.inner.CacheWriteError(err) }) }
func (h *Hooks) SnapshotSelfHeal(k, r string) {
	h.try(func() { h.inner.SnapshotSelfHeal(k, r) })
}
func (h *Hooks) RecordSelfHeal(k, r string) { h.try(func() { h.inner.RecordSelfHeal(k, r) }) }
func (h *Hooks) ProviderSetRejected(k string, snap bool) {
	h.try(func() { h.inner.ProviderSetRejected(k, snap) })
}
func (h *Hooks) RevError(op string, err error) { h.try(func() { h.inner.RevError(op, err) }) }
func (h *Hooks) ClearOutage(ns string, be, de error) {
	h.try(func() { h.inner.ClearOutage(ns, be, de) })
}

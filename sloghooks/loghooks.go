// Package sloghooks is a fallcache.Hooks sink that logs events through
// log/slog, with sampling on the chatty self-heal events.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/fallcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
}

var _ fallcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) RemoteFailed(err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("fallcache.remote_failed", "err", err)
}

func (h *Hooks) ServedCached(count int) {
	if h.l == nil {
		return
	}
	h.l.Debug("fallcache.served_cached", "records", count)
}

func (h *Hooks) ServedStale(count int) {
	if h.l == nil {
		return
	}
	h.l.Info("fallcache.served_stale", "records", count)
}

func (h *Hooks) CacheWriteError(err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("fallcache.cache_write_error", "err", err)
}

func (h *Hooks) SnapshotSelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("fallcache.snapshot_self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) RecordSelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("fallcache.record_self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string, isSnapshot bool) {
	if h.l == nil {
		return
	}
	h.l.Warn("fallcache.provider_set_rejected",
		"key", h.redact(storageKey),
		"is_snapshot", isSnapshot)
}

func (h *Hooks) RevError(op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("fallcache.rev_error",
		"op", op,
		"err", err)
}

func (h *Hooks) ClearOutage(namespace string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("fallcache.clear_outage",
		"ns", namespace,
		"bump_err", bumpErr,
		"del_err", delErr)
}

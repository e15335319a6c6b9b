// Package sloghooks reports swrcache events to a *slog.Logger.
// Keys are redacted and noisy events can be sampled.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/swrcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery    uint64
	RevalidatedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr    atomic.Uint64
	revalidatedCtr atomic.Uint64
}

var _ swrcache.Hooks = (*Hooks)(nil)

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

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("swrcache.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) StoreReadFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("swrcache.store_read_failed",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) StoreWriteFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("swrcache.store_write_failed",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("swrcache.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) PlaceholderFallback(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Info("swrcache.placeholder_fallback",
		"key", h.redact(storageKey))
}

func (h *Hooks) Revalidated(storageKey string) {
	if h.l == nil || !sample(h.opts.RevalidatedEvery, &h.revalidatedCtr) {
		return
	}
	h.l.Debug("swrcache.revalidated",
		"key", h.redact(storageKey))
}

func (h *Hooks) BackgroundComputeFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("swrcache.background_compute_failed",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) GenerationSkipped(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Info("swrcache.generation_skipped",
		"key", h.redact(storageKey))
}

func (h *Hooks) GenError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("swrcache.gen_error",
		"key", h.redact(storageKey),
		"err", err)
}

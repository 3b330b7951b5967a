package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/sessioncache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	ExpiredEvery  uint64
	ExtendedEvery uint64
	// Optional key redactor. Session keys are bearer secrets, so the default
	// is a SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	expiredCtr  atomic.Uint64
	extendedCtr atomic.Uint64
}

var _ sessioncache.Hooks = (*Hooks)(nil)

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

func (h *Hooks) Expired(storageKey string) {
	if h.l == nil || !sample(h.opts.ExpiredEvery, &h.expiredCtr) {
		return
	}
	h.l.Debug("sessioncache.expired",
		"key", h.redact(storageKey),
		"reason", "absolute")
}

func (h *Hooks) Stale(storageKey string) {
	if h.l == nil || !sample(h.opts.ExpiredEvery, &h.expiredCtr) {
		return
	}
	h.l.Debug("sessioncache.expired",
		"key", h.redact(storageKey),
		"reason", "sliding")
}

func (h *Hooks) SlidingExtended(storageKey string) {
	if h.l == nil || !sample(h.opts.ExtendedEvery, &h.extendedCtr) {
		return
	}
	h.l.Debug("sessioncache.sliding_extended",
		"key", h.redact(storageKey))
}

func (h *Hooks) MalformedRecord(storageKey string, size int) {
	if h.l == nil {
		return
	}
	h.l.Error("sessioncache.malformed_record",
		"key", h.redact(storageKey),
		"size", size)
}

func (h *Hooks) BackendError(op, storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("sessioncache.backend_error",
		"op", op,
		"key", h.redact(storageKey),
		"err", err)
}

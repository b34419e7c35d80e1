// Package sloghooks reports railcache events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/railcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SwallowedEvery   uint64
	AddRejectedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	swallowedCtr   atomic.Uint64
	addRejectedCtr atomic.Uint64
}

var _ railcache.Hooks = (*Hooks)(nil)

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

func (h *Hooks) Swallowed(op, key string, err error) {
	if h.l == nil || !sample(h.opts.SwallowedEvery, &h.swallowedCtr) {
		return
	}
	h.l.Warn("railcache.swallowed",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) AddRejected(key string) {
	if h.l == nil || !sample(h.opts.AddRejectedEvery, &h.addRejectedCtr) {
		return
	}
	h.l.Debug("railcache.add_rejected",
		"key", h.redact(key))
}

func (h *Hooks) FetchPopulated(key string, stored bool) {
	if h.l == nil {
		return
	}
	if stored {
		h.l.Debug("railcache.fetch_populated", "key", h.redact(key))
		return
	}
	h.l.Info("railcache.fetch_unstored",
		"key", h.redact(key),
		"reason", "write failed")
}

package kioshun

import (
	"context"
	"errors"
	"sync"
	"time"

	kc "github.com/unkn0wn-root/kioshun"

	"github.com/unkn0wn-root/railcache/internal/wire"
	pr "github.com/unkn0wn-root/railcache/provider"
)

// ErrRejected is returned when AdmissionLFU refuses a new key under pressure.
var ErrRejected = errors.New("kioshun: write rejected")

// Kioshun is an in-process store with per-entry TTLs. Values are framed with
// internal/wire, so K=string, V=[]byte.
type Kioshun struct {
	c *kc.InMemoryCache[string, []byte]

	// serializes check-then-act paths (Add, Delete)
	mu sync.Mutex
}

var _ pr.Provider = (*Kioshun)(nil)

type Config struct {
	MaxItems               int64             // total item capacity; 0 = unlimited
	ShardCount             int               // 0 = auto (CPU * multiplier)
	Policy                 kc.EvictionPolicy // LRU/LFU/FIFO/AdmissionLFU
	CleanupInterval        time.Duration     // 0 = disable background cleanup
	AdmissionResetInterval time.Duration     // only used by AdmissionLFU
	StatsEnabled           bool
}

// New builds the cache with no default TTL: every write passes its own, and
// ttl<=0 is sent as kioshun.NoExpiration.
func New(cfg Config) *Kioshun {
	return NewWithCache(kc.New[string, []byte](kc.Config{
		MaxSize:                cfg.MaxItems,
		ShardCount:             cfg.ShardCount,
		CleanupInterval:        cfg.CleanupInterval,
		EvictionPolicy:         cfg.Policy,
		StatsEnabled:           cfg.StatsEnabled,
		AdmissionResetInterval: cfg.AdmissionResetInterval,
	}))
}

func NewWithCache(c *kc.InMemoryCache[string, []byte]) *Kioshun { return &Kioshun{c: c} }

func (p *Kioshun) Get(_ context.Context, key string) (pr.Item, bool, error) {
	b, ok := p.c.Get(key)
	if !ok {
		return pr.Item{}, false, nil
	}
	flags, payload := wire.Unframe(b)
	return pr.Item{Value: payload, Flags: flags}, true, nil
}

func (p *Kioshun) GetMulti(_ context.Context, keys []string) (map[string]pr.Item, error) {
	out := make(map[string]pr.Item, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, found := p.c.GetBulk(keys)
	for i, k := range keys {
		if !found[i] {
			continue
		}
		flags, payload := wire.Unframe(vals[i])
		out[k] = pr.Item{Value: payload, Flags: flags}
	}
	return out, nil
}

func (p *Kioshun) Set(_ context.Context, key string, it pr.Item, ttl time.Duration) error {
	return p.set(key, it, ttl)
}

func (p *Kioshun) Add(_ context.Context, key string, it pr.Item, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.c.Exists(key) {
		return false, nil
	}
	if err := p.set(key, it, ttl); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Kioshun) Delete(_ context.Context, key string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.c.Delete(key), nil
}

func (p *Kioshun) Flush(_ context.Context) error {
	p.c.Clear()
	return nil
}

func (p *Kioshun) Close(_ context.Context) error {
	return p.c.Close()
}

// Stats exposes kioshun's counters (not part of provider.Provider).
func (p *Kioshun) Stats() kc.Stats { return p.c.Stats() }

// kioshun's Set has no admission result; a new key that is absent right after
// Set was refused.
func (p *Kioshun) set(key string, it pr.Item, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = kc.NoExpiration
	}
	if err := p.c.Set(key, wire.EncodeItem(it.Flags, it.Value), ttl); err != nil {
		return err
	}
	if !p.c.Exists(key) {
		return ErrRejected
	}
	return nil
}

package ristretto

import (
	"context"
	"errors"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/railcache/internal/wire"
	pr "github.com/unkn0wn-root/railcache/provider"
)

// ErrRejected is returned when ristretto's admission policy drops a write.
var ErrRejected = errors.New("ristretto: write rejected")

type Provider struct {
	c *rc.Cache

	// serializes check-then-act paths (Add, Delete)
	mu sync.Mutex
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	// Cost per entry is the framed value length.
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) (pr.Item, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return pr.Item{}, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		// shared *rc.Cache holding a non-byte value: not ours to read
		return pr.Item{}, false, nil
	}
	flags, payload := wire.Unframe(b)
	return pr.Item{Value: payload, Flags: flags}, true, nil
}

func (p *Provider) GetMulti(ctx context.Context, keys []string) (map[string]pr.Item, error) {
	out := make(map[string]pr.Item, len(keys))
	for _, k := range keys {
		if it, ok, _ := p.Get(ctx, k); ok {
			out[k] = it
		}
	}
	return out, nil
}

func (p *Provider) Set(_ context.Context, key string, it pr.Item, ttl time.Duration) error {
	return p.set(key, it, ttl)
}

func (p *Provider) Add(ctx context.Context, key string, it pr.Item, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok, _ := p.Get(ctx, key); ok {
		return false, nil
	}
	if err := p.set(key, it, ttl); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Delete(ctx context.Context, key string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok, _ := p.Get(ctx, key)
	p.c.Del(key)
	return ok, nil
}

func (p *Provider) Flush(_ context.Context) error {
	p.c.Clear()
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Helper to expose metrics if desired by the application (not part of provider.Provider).
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }

// set waits for the buffered write so a following Get observes it.
func (p *Provider) set(key string, it pr.Item, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	framed := wire.EncodeItem(it.Flags, it.Value)
	if !p.c.SetWithTTL(key, framed, int64(len(framed)), ttl) {
		return ErrRejected
	}
	p.c.Wait()
	return nil
}

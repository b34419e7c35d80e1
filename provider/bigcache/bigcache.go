package bigcache

import (
	"context"
	"errors"
	"sync"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/railcache/internal/wire"
	pr "github.com/unkn0wn-root/railcache/provider"
)

// Provider is an in-process store. BigCache has one global LifeWindow, so per-call TTLs are ignored.
type Provider struct {
	c *bc.BigCache

	// serializes Add's check-then-set against other Adds
	addMu sync.Mutex
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Provider, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	conf.Verbose = false
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) (pr.Item, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return pr.Item{}, false, nil
	}
	if err != nil {
		return pr.Item{}, false, err
	}
	flags, payload := wire.Unframe(b)
	return pr.Item{Value: payload, Flags: flags}, true, nil
}

func (p *Provider) GetMulti(ctx context.Context, keys []string) (map[string]pr.Item, error) {
	out := make(map[string]pr.Item, len(keys))
	for _, k := range keys {
		it, ok, err := p.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = it
		}
	}
	return out, nil
}

func (p *Provider) Set(_ context.Context, key string, it pr.Item, _ time.Duration) error {
	// BigCache does not support per-entry TTL; uses global LifeWindow.
	return p.c.Set(key, wire.EncodeItem(it.Flags, it.Value))
}

func (p *Provider) Add(ctx context.Context, key string, it pr.Item, ttl time.Duration) (bool, error) {
	p.addMu.Lock()
	defer p.addMu.Unlock()
	if _, ok, err := p.Get(ctx, key); err != nil || ok {
		return false, err
	}
	if err := p.Set(ctx, key, it, ttl); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Delete(_ context.Context, key string) (bool, error) {
	err := p.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Flush(_ context.Context) error {
	return p.c.Reset()
}

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}

package memcache

import (
	"context"
	"errors"
	"math"
	"time"

	gm "github.com/bradfitz/gomemcache/memcache"

	pr "github.com/unkn0wn-root/railcache/provider"
)

// relativeTTLLimit is the largest expiration memcached reads as "seconds from now";
// anything larger is taken as an absolute unix timestamp.
const relativeTTLLimit = 30 * 24 * time.Hour

type Memcache struct {
	c *gm.Client
}

var _ pr.Provider = (*Memcache)(nil)

type Config struct {
	Servers      []string
	Timeout      time.Duration // 0 = gomemcache default (500ms)
	MaxIdleConns int           // 0 = gomemcache default (2)
}

// New resolves cfg.Servers up front so bad addresses fail here rather than on first use.
// An empty server list is accepted; every operation then fails with gomemcache's ErrNoServers.
func New(cfg Config) (*Memcache, error) {
	ss := new(gm.ServerList)
	if err := ss.SetServers(cfg.Servers...); err != nil {
		return nil, err
	}
	c := gm.NewFromSelector(ss)
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	if cfg.MaxIdleConns > 0 {
		c.MaxIdleConns = cfg.MaxIdleConns
	}
	return &Memcache{c: c}, nil
}

// NewWithClient wraps an already configured gomemcache client.
func NewWithClient(c *gm.Client) *Memcache { return &Memcache{c: c} }

func (p *Memcache) Get(_ context.Context, key string) (pr.Item, bool, error) {
	it, err := p.c.Get(key)
	if errors.Is(err, gm.ErrCacheMiss) {
		return pr.Item{}, false, nil
	}
	if err != nil {
		return pr.Item{}, false, err
	}
	return pr.Item{Value: it.Value, Flags: it.Flags}, true, nil
}

func (p *Memcache) GetMulti(_ context.Context, keys []string) (map[string]pr.Item, error) {
	m, err := p.c.GetMulti(keys)
	if err != nil {
		return nil, err
	}
	out := make(map[string]pr.Item, len(m))
	for k, it := range m {
		out[k] = pr.Item{Value: it.Value, Flags: it.Flags}
	}
	return out, nil
}

func (p *Memcache) Set(_ context.Context, key string, it pr.Item, ttl time.Duration) error {
	return p.c.Set(item(key, it, ttl))
}

func (p *Memcache) Add(_ context.Context, key string, it pr.Item, ttl time.Duration) (bool, error) {
	err := p.c.Add(item(key, it, ttl))
	if errors.Is(err, gm.ErrNotStored) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Memcache) Delete(_ context.Context, key string) (bool, error) {
	err := p.c.Delete(key)
	if errors.Is(err, gm.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Memcache) Flush(_ context.Context) error {
	return p.c.FlushAll()
}

// Close is a no-op; gomemcache keeps only idle connections, which the GC reclaims.
func (p *Memcache) Close(_ context.Context) error { return nil }

func item(key string, it pr.Item, ttl time.Duration) *gm.Item {
	return &gm.Item{
		Key:        key,
		Value:      it.Value,
		Flags:      it.Flags,
		Expiration: expiration(ttl, time.Now()),
	}
}

func expiration(ttl time.Duration, now time.Time) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl > relativeTTLLimit {
		// past 2038 the protocol field saturates; a wrapped value would read as expired
		return int32(min(now.Add(ttl).Unix(), math.MaxInt32))
	}
	secs := int32(ttl / time.Second)
	if secs == 0 {
		secs = 1 // sub-second TTLs round up; 0 would mean "never"
	}
	return secs
}

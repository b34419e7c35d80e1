package client

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	kc "github.com/unkn0wn-root/kioshun"

	"github.com/unkn0wn-root/railcache"
	pr "github.com/unkn0wn-root/railcache/provider"
	"github.com/unkn0wn-root/railcache/provider/bigcache"
	"github.com/unkn0wn-root/railcache/provider/kioshun"
	"github.com/unkn0wn-root/railcache/provider/memcache"
	"github.com/unkn0wn-root/railcache/provider/redis"
	"github.com/unkn0wn-root/railcache/provider/ristretto"
)

var _ railcache.Factory = Factory

// Factory builds a Client for servers from adapter options. It is the default
// railcache.Factory; the "backend" option picks the store.
func Factory(servers []string, opts map[string]string) (railcache.Client, error) {
	s, err := ParseSettings(opts)
	if err != nil {
		return nil, err
	}
	store, err := s.provider(servers)
	if err != nil {
		return nil, errors.Wrapf(err, "railcache client: open %s backend", s.Backend)
	}
	cl, err := New(store, servers, s)
	if err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}
	return cl, nil
}

// Dial builds an adapter with the default Factory:
//
//	rc, err := client.Dial("10.0.0.1:11211", "10.0.0.2:11211", railcache.Options{
//	    "namespace":           "app",
//	    "namespace_separator": ":",
//	})
func Dial(args ...any) (*railcache.Adapter, error) {
	return railcache.New(railcache.Config{Factory: Factory}, args...)
}

// DialWith is Dial with logging and hooks configured.
func DialWith(cfg railcache.Config, args ...any) (*railcache.Adapter, error) {
	if cfg.Factory == nil {
		cfg.Factory = Factory
	}
	return railcache.New(cfg, args...)
}

func (s Settings) provider(servers []string) (pr.Provider, error) {
	switch s.Backend {
	case BackendRedis:
		return redis.Dial(servers), nil
	case BackendBigcache:
		return bigcache.New(bigcache.Config{LifeWindow: s.LifeWindow})
	case BackendRistretto:
		return ristretto.New(ristretto.Config{
			NumCounters: max(10*(s.MaxCost/1024), 1000),
			MaxCost:     s.MaxCost,
			BufferItems: 64,
		})
	case BackendKioshun:
		return kioshun.New(kioshun.Config{
			MaxItems:        s.MaxItems,
			Policy:          evictionPolicy(s.Eviction),
			CleanupInterval: time.Minute,
		}), nil
	default:
		return memcache.New(memcache.Config{
			Servers:      servers,
			Timeout:      s.Timeout,
			MaxIdleConns: s.MaxIdleConns,
		})
	}
}

func evictionPolicy(name string) kc.EvictionPolicy {
	switch name {
	case "lfu":
		return kc.LFU
	case "fifo":
		return kc.FIFO
	case "admission":
		return kc.AdmissionLFU
	default:
		return kc.LRU
	}
}

package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/railcache/internal/wire"
	pr "github.com/unkn0wn-root/railcache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

// Dial builds an owned universal client over addrs (single node, cluster or sentinel
// depending on the address count, as go-redis decides).
func Dial(addrs []string) *Redis {
	rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{Addrs: addrs})
	return &Redis{rdb: rdb, closeClient: true}
}

func (p *Redis) Get(ctx context.Context, key string) (pr.Item, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return pr.Item{}, false, nil // miss
	}
	if err != nil {
		return pr.Item{}, false, err // transport/server error
	}
	return unframe(b), true, nil
}

func (p *Redis) GetMulti(ctx context.Context, keys []string) (map[string]pr.Item, error) {
	out := make(map[string]pr.Item, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := p.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		var b []byte
		switch vv := v.(type) {
		case nil:
			continue
		case string:
			b = []byte(vv)
		case []byte:
			b = vv
		default:
			continue
		}
		out[keys[i]] = unframe(b)
	}
	return out, nil
}

func (p *Redis) Set(ctx context.Context, key string, it pr.Item, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 0 // treat non-positive TTLs as "no expiry" per provider contract
	}
	return p.rdb.Set(ctx, key, wire.EncodeItem(it.Flags, it.Value), ttl).Err()
}

func (p *Redis) Add(ctx context.Context, key string, it pr.Item, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 0
	}
	return p.rdb.SetNX(ctx, key, wire.EncodeItem(it.Flags, it.Value), ttl).Result()
}

func (p *Redis) Delete(ctx context.Context, key string) (bool, error) {
	n, err := p.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *Redis) Flush(ctx context.Context) error {
	return p.rdb.FlushDB(ctx).Err()
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

// unframe strips railcache framing. Values written by other clients are returned
// as raw items and left in place.
func unframe(b []byte) pr.Item {
	flags, payload := wire.Unframe(b)
	return pr.Item{Value: payload, Flags: flags}
}

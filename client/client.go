// Package client implements railcache.Client on top of a provider byte store and a codec.
//
// Values written with decode=true are encoded by the configured codec and tagged with
// FlagEncoded; values written with decode=false are stored as raw bytes. Reads honor the
// tag, so a raw value read in decode mode comes back as []byte instead of failing.
package client

import (
	"context"
	"math"
	"time"

	"github.com/unkn0wn-root/railcache"
	c "github.com/unkn0wn-root/railcache/codec"
	"github.com/unkn0wn-root/railcache/internal/util"
	pr "github.com/unkn0wn-root/railcache/provider"
)

// FlagEncoded marks items whose bytes were produced by the codec.
const FlagEncoded uint32 = 1

type Client struct {
	store      pr.Provider
	codec      c.Codec[any]
	raw        c.Codec[any]
	prefix     string
	servers    []string
	defaultTTL int
}

var _ railcache.Client = (*Client)(nil)

// New wraps store. servers is reported back through Servers and is otherwise unused here.
func New(store pr.Provider, servers []string, s Settings) (*Client, error) {
	cd, err := c.ByName(s.Codec, s.MaxValueSize)
	if err != nil {
		return nil, err
	}
	var raw c.Codec[any] = c.Raw{}
	if s.MaxValueSize > 0 {
		raw = c.LimitCodec[any]{Inner: raw, Max: s.MaxValueSize}
	}
	return &Client{
		store:      store,
		codec:      cd,
		raw:        raw,
		prefix:     s.Prefix(),
		servers:    append([]string(nil), servers...),
		defaultTTL: s.DefaultTTL,
	}, nil
}

func (cl *Client) Get(ctx context.Context, key string, decode bool) (any, bool, error) {
	it, ok, err := cl.store.Get(ctx, cl.storageKey(key))
	if err != nil {
		return nil, false, opError("get", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	v, err := cl.value(it, decode)
	if err != nil {
		return nil, false, opError("get", key, err)
	}
	return v, true, nil
}

func (cl *Client) GetMulti(ctx context.Context, keys []string, decode bool) (map[string]any, error) {
	out := make(map[string]any, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	byStorage := make(map[string]string, len(keys))
	storage := make([]string, 0, len(keys))
	for _, k := range keys {
		sk := cl.storageKey(k)
		if _, dup := byStorage[sk]; dup {
			continue
		}
		byStorage[sk] = k
		storage = append(storage, sk)
	}
	items, err := cl.store.GetMulti(ctx, storage)
	if err != nil {
		return nil, opError("get_multi", keys[0], err)
	}
	for sk, it := range items {
		v, err := cl.value(it, decode)
		if err != nil {
			continue // undecodable members are reported as misses
		}
		out[byStorage[sk]] = v
	}
	return out, nil
}

func (cl *Client) Set(ctx context.Context, key string, value any, ttl int, decode bool) error {
	it, err := cl.item(value, decode)
	if err != nil {
		return opError("set", key, err)
	}
	if err := cl.store.Set(ctx, cl.storageKey(key), it, seconds(ttl)); err != nil {
		return opError("set", key, err)
	}
	return nil
}

// Add follows the store-if-absent convention of taking the raw flag rather than the decode flag.
func (cl *Client) Add(ctx context.Context, key string, value any, ttl int, raw bool) (bool, error) {
	it, err := cl.item(value, !raw)
	if err != nil {
		return false, opError("add", key, err)
	}
	stored, err := cl.store.Add(ctx, cl.storageKey(key), it, seconds(ttl))
	if err != nil {
		return false, opError("add", key, err)
	}
	return stored, nil
}

func (cl *Client) Delete(ctx context.Context, key string) (bool, error) {
	found, err := cl.store.Delete(ctx, cl.storageKey(key))
	if err != nil {
		return false, opError("delete", key, err)
	}
	return found, nil
}

func (cl *Client) FlushAll(ctx context.Context) error {
	if err := cl.store.Flush(ctx); err != nil {
		return opError("flush_all", "", err)
	}
	return nil
}

func (cl *Client) Servers() []string { return append([]string(nil), cl.servers...) }

func (cl *Client) DefaultTTL() int { return cl.defaultTTL }

func (cl *Client) Close(ctx context.Context) error { return cl.store.Close(ctx) }

func (cl *Client) storageKey(key string) string {
	return util.StorageKey(cl.prefix, key)
}

func (cl *Client) item(value any, decode bool) (pr.Item, error) {
	if !decode {
		b, err := cl.raw.Encode(value)
		return pr.Item{Value: b}, err
	}
	b, err := cl.codec.Encode(value)
	return pr.Item{Value: b, Flags: FlagEncoded}, err
}

func (cl *Client) value(it pr.Item, decode bool) (any, error) {
	if decode && it.Flags&FlagEncoded != 0 {
		return cl.codec.Decode(it.Value)
	}
	// copy: providers may hand out slices of their own buffers
	return append([]byte(nil), it.Value...), nil
}

// maxTTLSeconds is the largest TTL a time.Duration can carry.
const maxTTLSeconds = int64(math.MaxInt64 / int64(time.Second))

func seconds(ttl int) time.Duration {
	if ttl <= 0 {
		return 0
	}
	if int64(ttl) > maxTTLSeconds {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ttl) * time.Second
}

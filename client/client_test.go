package client

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/railcache"
	"github.com/unkn0wn-root/railcache/codec"
	"github.com/unkn0wn-root/railcache/internal/util"
	pr "github.com/unkn0wn-root/railcache/provider"
)

var errIO = errors.New("connection reset")

// memStore is an in-memory pr.Provider that remembers the TTL of every write.
type memStore struct {
	mu     sync.Mutex
	items  map[string]pr.Item
	ttls   map[string]time.Duration
	fail   error
	closed bool
}

var _ pr.Provider = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{items: map[string]pr.Item{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) (pr.Item, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return pr.Item{}, false, m.fail
	}
	it, ok := m.items[key]
	return it, ok, nil
}

func (m *memStore) GetMulti(_ context.Context, keys []string) (map[string]pr.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := map[string]pr.Item{}
	for _, k := range keys {
		if it, ok := m.items[k]; ok {
			out[k] = it
		}
	}
	return out, nil
}

func (m *memStore) Set(_ context.Context, key string, it pr.Item, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.items[key], m.ttls[key] = it, ttl
	return nil
}

func (m *memStore) Add(_ context.Context, key string, it pr.Item, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	if _, ok := m.items[key]; ok {
		return false, nil
	}
	m.items[key], m.ttls[key] = it, ttl
	return true, nil
}

func (m *memStore) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	_, ok := m.items[key]
	delete(m.items, key)
	return ok, nil
}

func (m *memStore) Flush(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.items = map[string]pr.Item{}
	return nil
}

func (m *memStore) Close(context.Context) error {
	m.closed = true
	return nil
}

func newTestClient(t *testing.T, opts map[string]string) (*Client, *memStore) {
	t.Helper()
	s, err := ParseSettings(opts)
	require.NoError(t, err)
	store := newMemStore()
	cl, err := New(store, []string{"127.0.0.1:11211"}, s)
	require.NoError(t, err)
	return cl, store
}

func TestEncodedRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, codec := range []string{"", "msgpack", "json", "cbor", "protobuf"} {
		t.Run("codec="+codec, func(t *testing.T) {
			cl, store := newTestClient(t, map[string]string{"codec": codec})
			want := map[string]any{"name": "ada", "role": "admin"}

			require.NoError(t, cl.Set(ctx, "user", want, 60, true))
			assert.Equal(t, FlagEncoded, store.items["user"].Flags)

			got, found, err := cl.Get(ctx, "user", true)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, want, got)
		})
	}
}

func TestRawValuesReadBackAsBytes(t *testing.T) {
	ctx := context.Background()
	cl, store := newTestClient(t, nil)

	require.NoError(t, cl.Set(ctx, "counter", 42, 0, false))
	assert.Equal(t, uint32(0), store.items["counter"].Flags)
	assert.Equal(t, []byte("42"), store.items["counter"].Value)

	// decode mode does not try to decode bytes the codec never wrote
	for _, decode := range []bool{true, false} {
		got, found, err := cl.Get(ctx, "counter", decode)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte("42"), got)
	}

	// raw reads of encoded values return the encoded bytes
	require.NoError(t, cl.Set(ctx, "obj", "text", 0, true))
	got, _, err := cl.Get(ctx, "obj", false)
	require.NoError(t, err)
	assert.IsType(t, []byte(nil), got)
	assert.Equal(t, store.items["obj"].Value, got)
}

func TestRawReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	cl, store := newTestClient(t, nil)
	require.NoError(t, cl.Set(ctx, "k", []byte("abc"), 0, false))

	got, _, err := cl.Get(ctx, "k", false)
	require.NoError(t, err)
	got.([]byte)[0] = 'z'
	assert.Equal(t, []byte("abc"), store.items["k"].Value)
}

func TestMissIsNotAnError(t *testing.T) {
	cl, _ := newTestClient(t, nil)
	v, found, err := cl.Get(context.Background(), "nope", true)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, v)
}

func TestTTLSeconds(t *testing.T) {
	ctx := context.Background()
	cl, store := newTestClient(t, nil)

	require.NoError(t, cl.Set(ctx, "a", "v", 90, true))
	assert.Equal(t, 90*time.Second, store.ttls["a"])

	require.NoError(t, cl.Set(ctx, "b", "v", 0, true))
	assert.Equal(t, time.Duration(0), store.ttls["b"])

	_, err := cl.Add(ctx, "c", "v", 5, false)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, store.ttls["c"])

	// saturates instead of wrapping into a negative (no expiry) duration
	require.NoError(t, cl.Set(ctx, "d", "v", math.MaxInt, true))
	assert.Equal(t, time.Duration(math.MaxInt64), store.ttls["d"])
}

func TestAddTakesRawFlag(t *testing.T) {
	ctx := context.Background()
	cl, store := newTestClient(t, nil)

	stored, err := cl.Add(ctx, "raw", "v", 0, true)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, uint32(0), store.items["raw"].Flags)
	assert.Equal(t, []byte("v"), store.items["raw"].Value)

	stored, err = cl.Add(ctx, "enc", "v", 0, false)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, FlagEncoded, store.items["enc"].Flags)

	stored, err = cl.Add(ctx, "enc", "other", 0, false)
	require.NoError(t, err)
	assert.False(t, stored)
}

func TestStorageKeys(t *testing.T) {
	ctx := context.Background()
	cl, store := newTestClient(t, map[string]string{"prefix_key": "app", "prefix_delimiter": ":"})

	require.NoError(t, cl.Set(ctx, "user 1", "v", 0, true))
	_, ok := store.items["app:user%201"]
	assert.True(t, ok, "keys: %v", store.items)

	long := strings.Repeat("x", 400)
	require.NoError(t, cl.Set(ctx, long, "v", 0, true))
	sk := util.StorageKey("app:", long)
	assert.LessOrEqual(t, len(sk), util.MaxKeyLen)
	_, ok = store.items[sk]
	assert.True(t, ok)

	got, found, err := cl.Get(ctx, long, true)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", got)
}

func TestGetMultiMapsBackToCallerKeys(t *testing.T) {
	ctx := context.Background()
	cl, _ := newTestClient(t, map[string]string{"prefix_key": "ns", "prefix_delimiter": "/"})

	require.NoError(t, cl.Set(ctx, "a", "1", 0, true))
	require.NoError(t, cl.Set(ctx, "b c", []byte("2"), 0, false))

	got, err := cl.GetMulti(ctx, []string{"a", "b c", "a", "missing"}, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "1", "b c": []byte("2")}, got)

	empty, err := cl.GetMulti(ctx, nil, true)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteReportsFound(t *testing.T) {
	ctx := context.Background()
	cl, _ := newTestClient(t, nil)
	require.NoError(t, cl.Set(ctx, "k", "v", 0, true))

	found, err := cl.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = cl.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreFailuresAreOpErrors(t *testing.T) {
	ctx := context.Background()
	cl, store := newTestClient(t, nil)
	store.fail = errIO

	checks := map[string]error{}
	_, _, checks["get"] = cl.Get(ctx, "k", true)
	_, checks["get_multi"] = cl.GetMulti(ctx, []string{"k"}, true)
	checks["set"] = cl.Set(ctx, "k", "v", 0, true)
	_, checks["add"] = cl.Add(ctx, "k", "v", 0, false)
	_, checks["delete"] = cl.Delete(ctx, "k")
	checks["flush_all"] = cl.FlushAll(ctx)

	for op, err := range checks {
		var oe *OpError
		require.Truef(t, errors.As(err, &oe), "%s: %v", op, err)
		assert.Equal(t, op, oe.Op)
		assert.Truef(t, errors.Is(err, errIO), "%s does not wrap the store error", op)
	}
}

func TestUndecodableValue(t *testing.T) {
	ctx := context.Background()
	cl, store := newTestClient(t, map[string]string{"codec": "json"})
	store.items["bad"] = pr.Item{Value: []byte("{not json"), Flags: FlagEncoded}

	_, _, err := cl.Get(ctx, "bad", true)
	var oe *OpError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "get", oe.Op)

	got, err := cl.GetMulti(ctx, []string{"bad"}, true)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestServersAndClose(t *testing.T) {
	cl, store := newTestClient(t, map[string]string{"default_ttl": "1h"})
	servers := cl.Servers()
	servers[0] = "mutated"
	assert.Equal(t, []string{"127.0.0.1:11211"}, cl.Servers())
	assert.Equal(t, 3600, cl.DefaultTTL())

	require.NoError(t, cl.Close(context.Background()))
	assert.True(t, store.closed)
}

func TestNamespaceAndPrefixKeyShareEntries(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	factory := func(servers []string, opts map[string]string) (railcache.Client, error) {
		s, err := ParseSettings(opts)
		if err != nil {
			return nil, err
		}
		return New(store, servers, s)
	}

	viaAlias, err := railcache.New(railcache.Config{Factory: factory}, "a:1",
		railcache.Options{"namespace": "app", "namespace_separator": "."})
	require.NoError(t, err)
	viaNative, err := railcache.New(railcache.Config{Factory: factory}, "a:1",
		railcache.Options{"prefix_key": "app", "prefix_delimiter": "."})
	require.NoError(t, err)

	require.True(t, viaAlias.Set(ctx, "k", "v"))
	assert.Equal(t, "v", viaNative.Get(ctx, "k"))
	_, ok := store.items["app.k"]
	assert.True(t, ok)
}

func TestMaxValueSize(t *testing.T) {
	ctx := context.Background()
	cl, store := newTestClient(t, map[string]string{"max_value_size": "8"})

	for _, decode := range []bool{true, false} {
		err := cl.Set(ctx, "k", strings.Repeat("x", 64), 0, decode)
		assert.Truef(t, errors.Is(err, codec.ErrTooLarge), "decode=%v: %v", decode, err)
	}
	assert.Empty(t, store.items)

	require.NoError(t, cl.Set(ctx, "k", "ok", 0, false))
}

func TestLargeIntegersKeepTheirType(t *testing.T) {
	ctx := context.Background()
	cl, _ := newTestClient(t, nil)

	require.NoError(t, cl.Set(ctx, "n", int64(1)<<40, 0, true))
	got, found, err := cl.Get(ctx, "n", true)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1)<<40, got)
}

package railcache

import (
	"context"
	"strings"
)

// Status strings Add returns when the adapter was built with "string_return_types".
const (
	StatusStored    = "STORED\r\n"
	StatusNotStored = "NOT STORED\r\n"
)

// Adapter exposes the framework-style cache API over one Client.
//
// Nothing here returns client errors except Flush: misses, rejected writes and
// transport failures all become nil, false or an empty map. The only state besides
// the client is the string-return-types flag, fixed at construction, so an Adapter
// is safe for concurrent use whenever its Client is.
type Adapter struct {
	client            Client
	stringReturnTypes bool
	log               Logger
	hooks             Hooks
}

// Active reports whether the adapter was given at least one server.
func (r *Adapter) Active() bool { return len(r.client.Servers()) > 0 }

// Logger returns the logger set at construction.
func (r *Adapter) Logger() Logger { return r.log }

// StringReturnTypes reports whether Add returns status strings instead of booleans.
func (r *Adapter) StringReturnTypes() bool { return r.stringReturnTypes }

// Close releases the client. The adapter must not be used afterwards.
func (r *Adapter) Close(ctx context.Context) error { return r.client.Close(ctx) }

// Get returns the value stored under key, or nil on a miss or any failure.
// A trailing true or Options{"raw": true} returns the stored bytes undecoded.
func (r *Adapter) Get(ctx context.Context, key string, args ...any) any {
	decode := decodeAt(normalize(args), 0)
	v, found, err := r.client.Get(ctx, key, decode)
	if err != nil {
		r.swallow("get", key, err)
		return nil
	}
	if !found {
		return nil
	}
	return v
}

// Read is Get.
func (r *Adapter) Read(ctx context.Context, key string, args ...any) any {
	return r.Get(ctx, key, args...)
}

// Exist reports whether a get for key succeeds.
func (r *Adapter) Exist(ctx context.Context, key string, args ...any) bool {
	_, found, err := r.client.Get(ctx, key, decodeAt(normalize(args), 0))
	if err != nil {
		r.swallow("exist", key, err)
		return false
	}
	return found
}

// GetMulti returns the found subset of keys. It never returns nil and does not
// reach the client for an empty key list.
func (r *Adapter) GetMulti(ctx context.Context, keys []string, args ...any) map[string]any {
	if len(keys) == 0 {
		return map[string]any{}
	}
	m, err := r.client.GetMulti(ctx, keys, decodeAt(normalize(args), 0))
	if err != nil {
		r.swallow("get_multi", strings.Join(keys, ","), err)
		return map[string]any{}
	}
	if m == nil {
		return map[string]any{}
	}
	return m
}

// ReadMulti is the variadic GetMulti.
func (r *Adapter) ReadMulti(ctx context.Context, keys ...string) map[string]any {
	return r.GetMulti(ctx, keys)
}

// Set stores value unconditionally and reports success.
//
//	Set(ctx, k, v)                          default TTL, encoded
//	Set(ctx, k, v, 300)                     TTL 300s
//	Set(ctx, k, v, Options{"ttl": 300})     TTL 300s
//	Set(ctx, k, v, 0, true)                 no expiry, raw bytes
//
// The TTL comes from the first trailing argument, the raw flag from the second.
func (r *Adapter) Set(ctx context.Context, key string, value any, args ...any) bool {
	a := normalize(args)
	return r.set(ctx, "set", key, value, r.ttlAt(a, 0), decodeAt(a, 1))
}

// Write is Set with TTL and raw flag both read from the first trailing argument,
// typically Options{"expires_in": 60, "raw": true}.
func (r *Adapter) Write(ctx context.Context, key string, value any, args ...any) bool {
	a := normalize(args)
	return r.set(ctx, "write", key, value, r.ttlAt(a, 0), decodeAt(a, 0))
}

// Add stores value only if key is absent. It returns a bool, or StatusStored /
// StatusNotStored when the adapter was built with "string_return_types".
func (r *Adapter) Add(ctx context.Context, key string, value any, args ...any) any {
	a := normalize(args)
	stored, err := r.client.Add(ctx, key, value, r.ttlAt(a, 0), !decodeAt(a, 1))
	switch {
	case err != nil:
		r.swallow("add", key, err)
	case !stored:
		r.hooks.AddRejected(key)
	}
	return r.addReply(err == nil && stored)
}

// Delete removes key. Deleting a missing key, or failing to delete, is silent.
func (r *Adapter) Delete(ctx context.Context, key string, _ ...any) {
	found, err := r.client.Delete(ctx, key)
	if err != nil {
		r.swallow("delete", key, err)
		return
	}
	if !found {
		r.log.Debug("delete of absent key", Fields{"key": key})
	}
}

// Flush drops every entry. Unlike the other operations it returns the client's
// result as is.
func (r *Adapter) Flush(ctx context.Context) error { return r.client.FlushAll(ctx) }

// FlushAll is Flush.
func (r *Adapter) FlushAll(ctx context.Context) error { return r.Flush(ctx) }

// Clear is Flush.
func (r *Adapter) Clear(ctx context.Context) error { return r.Flush(ctx) }

func (r *Adapter) set(ctx context.Context, op, key string, value any, ttl int, decode bool) bool {
	if err := r.client.Set(ctx, key, value, ttl, decode); err != nil {
		r.swallow(op, key, err)
		return false
	}
	return true
}

func (r *Adapter) addReply(stored bool) any {
	if r.stringReturnTypes {
		if stored {
			return StatusStored
		}
		return StatusNotStored
	}
	return stored
}

func (r *Adapter) swallow(op, key string, err error) {
	r.log.Debug("client error translated", Fields{"op": op, "key": key, "err": err})
	r.hooks.Swallowed(op, key, err)
}

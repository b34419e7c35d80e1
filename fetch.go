package railcache

import "context"

// Fetch is a read-through get. On a hit it returns the cached value. On a miss it
// calls producer once, writes the result with the same trailing arguments (see
// Write) and returns it whether or not the write succeeded.
//
// Concurrent Fetches of one key are not coordinated: each may miss and run its
// own producer.
func (r *Adapter) Fetch(ctx context.Context, key string, producer func() any, args ...any) any {
	if v := r.Read(ctx, key, args...); v != nil {
		return v
	}
	if producer == nil {
		return nil
	}
	v := producer()
	stored := r.Write(ctx, key, v, args...)
	r.hooks.FetchPopulated(key, stored)
	return v
}

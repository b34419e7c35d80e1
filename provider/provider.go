// Package provider defines the byte stores railcache clients talk to.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// Item previously passed to Set or Add for a key (same Value bytes, same Flags).
// Stores without an out-of-band flags field frame items with internal/wire and
// strip the framing on read.
package provider

import (
	"context"
	"time"
)

// Item is a stored value plus the 32 opaque flag bits memcached keeps beside it.
type Item struct {
	Value []byte
	Flags uint32
}

// Provider is a byte store with TTLs, store-if-absent and flush.
// Must be safe for concurrent use. Outcomes that memcached reports as errors
// (miss, not stored) are explicit results here; err is reserved for IO/protocol failures.
type Provider interface {
	// Get returns (item, true, nil) on hit; (Item{}, false, nil) on miss.
	Get(ctx context.Context, key string) (Item, bool, error)

	// GetMulti returns the hits only; missing keys are absent from the map.
	GetMulti(ctx context.Context, keys []string) (map[string]Item, error)

	// Set stores it unconditionally. ttl<=0 means no expiry.
	Set(ctx context.Context, key string, it Item, ttl time.Duration) error

	// Add stores it only if key is absent. stored=false, err=nil means the key exists.
	Add(ctx context.Context, key string, it Item, ttl time.Duration) (stored bool, err error)

	// Delete removes key. found=false, err=nil means there was nothing to delete.
	Delete(ctx context.Context, key string) (found bool, err error)

	// Flush drops every entry.
	Flush(ctx context.Context) error

	// Close releases resources.
	Close(ctx context.Context) error
}

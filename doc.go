// Package railcache adapts a key-value cache client to the framework-style cache API
// web applications expect: Get/Read, Exist, GetMulti/ReadMulti, Set/Write, Add,
// Fetch, Delete and Flush/FlushAll/Clear.
//
// The adapter does not talk to servers itself. It normalizes loosely shaped call
// arguments into a key, a value, a TTL in seconds and a decode flag, hands them to a
// Client, and translates the Client's outcomes into soft results: a miss or a
// failure is nil, false or an empty map, never an error.
//
// Trailing arguments:
//
//	integer / time.Duration   TTL (whole seconds)
//	true                      raw mode: store and return bytes, skip the codec
//	Options{...}              "ttl", "expires_in", "raw"
//
// Construction options (New):
//
//	"servers"              server list, when none is given positionally
//	"namespace"            alias of the client's "prefix_key"
//	"namespace_separator"  alias of the client's "prefix_delimiter"
//	"string_return_types"  Add returns "STORED\r\n" / "NOT STORED\r\n" instead of bool
//
// Every other option is passed to the Factory as a string (see package client).
//
// Read-through:
//
//	user := rc.Fetch(ctx, "user:42", func() any { return loadUser(42) }, railcache.Options{"expires_in": 300})
package railcache

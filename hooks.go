package railcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The adapter calls them on hot paths.
type Hooks interface {
	// A client failure was turned into a soft return value.
	// op ∈ {"get", "exist", "get_multi", "set", "write", "add", "delete"}
	// For get_multi, key is the comma-joined key list.
	Swallowed(op, key string, err error)

	// Add found the key already present.
	AddRejected(key string)

	// Fetch missed, ran its producer and wrote the result; stored is the write outcome.
	FetchPopulated(key string, stored bool)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Swallowed(string, string, error) {}
func (NopHooks) AddRejected(string)              {}
func (NopHooks) FetchPopulated(string, bool)     {}

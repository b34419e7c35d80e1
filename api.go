package railcache

import (
	"context"
	"errors"
	"fmt"
)

// Client is the key-value cache client the adapter drives. Misses and
// already-present keys are explicit results; err is for protocol and connection failures.
type Client interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	// decode=false returns the stored bytes untouched.
	Get(ctx context.Context, key string, decode bool) (value any, found bool, err error)
	// GetMulti returns hits only.
	GetMulti(ctx context.Context, keys []string, decode bool) (map[string]any, error)
	Set(ctx context.Context, key string, value any, ttl int, decode bool) error
	// Add stores only when key is absent. Its last parameter is the raw flag, the
	// negation of the decode flag the other operations take.
	Add(ctx context.Context, key string, value any, ttl int, raw bool) (stored bool, err error)
	Delete(ctx context.Context, key string) (found bool, err error)
	FlushAll(ctx context.Context) error

	Servers() []string
	DefaultTTL() int // seconds
	Close(ctx context.Context) error
}

// Factory creates the one Client an adapter owns, from the normalized server list
// and the folded string options.
type Factory func(servers []string, options map[string]string) (Client, error)

// Config wires the adapter. Only Factory is required.
type Config struct {
	Factory Factory
	Logger  Logger // if nil, NopLogger is used
	Hooks   Hooks  // if nil, NopHooks is used
}

var (
	ErrNoFactory = errors.New("railcache: factory is required")
	ErrNilClient = errors.New("railcache: factory returned a nil client")
)

// New builds an adapter from server arguments and an optional trailing Options map:
//
//	New(cfg, "10.0.0.1:11211", "10.0.0.2:11211")
//	New(cfg, []string{"10.0.0.1:11211"}, Options{"namespace": "app"})
//	New(cfg, Options{"servers": []string{"10.0.0.1:11211"}, "string_return_types": true})
//
// An empty server list is not an error; the adapter just reports Active() == false.
func New(cfg Config, args ...any) (*Adapter, error) {
	if cfg.Factory == nil {
		return nil, ErrNoFactory
	}
	in := normalizeConstruction(args)
	cl, err := cfg.Factory(in.servers, in.options)
	if err != nil {
		return nil, fmt.Errorf("railcache: create client: %w", err)
	}
	if cl == nil {
		return nil, ErrNilClient
	}
	return &Adapter{
		client:            cl,
		stringReturnTypes: in.stringReturnTypes,
		log:               coalesce[Logger](cfg.Logger, NopLogger{}),
		hooks:             coalesce[Hooks](cfg.Hooks, NopHooks{}),
	}, nil
}

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

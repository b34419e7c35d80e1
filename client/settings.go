package client

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
	"github.com/xhit/go-str2duration/v2"
)

// DefaultTTL is one week, in seconds.
const DefaultTTL = 7 * 24 * 60 * 60

// Backends understood by the "backend" option.
const (
	BackendMemcached = "memcached"
	BackendRedis     = "redis"
	BackendBigcache  = "bigcache"
	BackendRistretto = "ristretto"
	BackendKioshun   = "kioshun"
)

// Settings is the typed form of the string options a client is built from.
type Settings struct {
	Backend         string
	Codec           string
	PrefixKey       string
	PrefixDelimiter string
	DefaultTTL      int // seconds
	MaxValueSize    int // bytes; 0 = unlimited

	// memcached
	Timeout      time.Duration
	MaxIdleConns int

	// in-process backends
	LifeWindow time.Duration // bigcache
	MaxCost    int64         // ristretto, bytes
	MaxItems   int64         // kioshun; 0 = unlimited
	Eviction   string        // kioshun: lru | lfu | fifo | admission
}

// ParseSettings reads the options the client understands; unknown keys are ignored.
//
//	backend           memcached | redis | bigcache | ristretto | kioshun (default memcached)
//	codec             msgpack | json | cbor | protobuf | raw (default msgpack)
//	prefix_key        key namespace
//	prefix_delimiter  placed between prefix_key and the key
//	default_ttl       seconds or a duration such as "12h" or "7d" (default one week)
//	max_value_size    largest value written or decoded, in bytes
//	timeout           memcached socket timeout, seconds or duration
//	max_idle_conns    memcached idle connections per server
//	life_window       bigcache entry lifetime (default default_ttl)
//	max_cost          ristretto capacity in bytes (default 64MiB)
//	max_items         kioshun capacity in entries (default 100000; 0 = unlimited)
//	eviction          kioshun policy: lru | lfu | fifo | admission (default lru)
func ParseSettings(opts map[string]string) (Settings, error) {
	s := Settings{
		Backend:         BackendMemcached,
		Codec:           opts["codec"],
		PrefixKey:       opts["prefix_key"],
		PrefixDelimiter: opts["prefix_delimiter"],
		DefaultTTL:      DefaultTTL,
		MaxCost:         64 << 20,
		MaxItems:        100_000,
		Eviction:        "lru",
	}
	if b := strings.ToLower(strings.TrimSpace(opts["backend"])); b != "" {
		s.Backend = b
	}
	switch s.Backend {
	case BackendMemcached, BackendRedis, BackendBigcache, BackendRistretto, BackendKioshun:
	default:
		return Settings{}, errors.Wrapf(ErrUnknownBackend, "%q", s.Backend)
	}

	if v, ok := opts["default_ttl"]; ok {
		d, err := ParseDuration(v)
		if err != nil || d < 0 {
			return Settings{}, badOption("default_ttl", v, err)
		}
		s.DefaultTTL = int(d / time.Second)
	}
	if v, ok := opts["max_value_size"]; ok {
		n, err := cast.ToIntE(v)
		if err != nil || n < 0 {
			return Settings{}, badOption("max_value_size", v, err)
		}
		s.MaxValueSize = n
	}
	if v, ok := opts["timeout"]; ok {
		d, err := ParseDuration(v)
		if err != nil || d < 0 {
			return Settings{}, badOption("timeout", v, err)
		}
		s.Timeout = d
	}
	if v, ok := opts["max_idle_conns"]; ok {
		n, err := cast.ToIntE(v)
		if err != nil || n < 0 {
			return Settings{}, badOption("max_idle_conns", v, err)
		}
		s.MaxIdleConns = n
	}
	s.LifeWindow = time.Duration(s.DefaultTTL) * time.Second
	if v, ok := opts["life_window"]; ok {
		d, err := ParseDuration(v)
		if err != nil || d <= 0 {
			return Settings{}, badOption("life_window", v, err)
		}
		s.LifeWindow = d
	}
	if v, ok := opts["max_cost"]; ok {
		n, err := cast.ToInt64E(v)
		if err != nil || n <= 0 {
			return Settings{}, badOption("max_cost", v, err)
		}
		s.MaxCost = n
	}
	if v, ok := opts["max_items"]; ok {
		n, err := cast.ToInt64E(v)
		if err != nil || n < 0 {
			return Settings{}, badOption("max_items", v, err)
		}
		s.MaxItems = n
	}
	if v, ok := opts["eviction"]; ok {
		e := strings.ToLower(strings.TrimSpace(v))
		switch e {
		case "lru", "lfu", "fifo", "admission":
		default:
			return Settings{}, badOption("eviction", v, nil)
		}
		s.Eviction = e
	}
	return s, nil
}

// Prefix is what every storage key starts with.
func (s Settings) Prefix() string {
	if s.PrefixKey == "" {
		return ""
	}
	return s.PrefixKey + s.PrefixDelimiter
}

// ParseDuration accepts "" (zero), plain seconds ("30", "0.5") or str2duration
// syntax ("90s", "1d12h").
func ParseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(f * float64(time.Second)), nil
	}
	return str2duration.ParseDuration(v)
}

func badOption(name, value string, cause error) error {
	if cause == nil {
		cause = errors.New("out of range")
	}
	return errors.Wrapf(errors.Mark(cause, ErrBadOption), "option %s=%q", name, value)
}

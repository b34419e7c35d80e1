// Package config loads adapter settings from a file and RAILCACHE_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/unkn0wn-root/railcache"
	"github.com/unkn0wn-root/railcache/client"
)

// EnvPrefix is prepended to every environment variable, e.g. RAILCACHE_SERVERS.
const EnvPrefix = "RAILCACHE"

// Config is the file/environment form of the adapter's constructor arguments.
type Config struct {
	Servers            []string `mapstructure:"servers"`
	Backend            string   `mapstructure:"backend"`
	Codec              string   `mapstructure:"codec"`
	Namespace          string   `mapstructure:"namespace"`
	NamespaceSeparator string   `mapstructure:"namespace_separator"`
	DefaultTTL         string   `mapstructure:"default_ttl"`
	Timeout            string   `mapstructure:"timeout"`
	MaxIdleConns       int      `mapstructure:"max_idle_conns"`
	MaxValueSize       int      `mapstructure:"max_value_size"`
	StringReturnTypes  bool     `mapstructure:"string_return_types"`
	LogLevel           string   `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("servers", []string{})
	v.SetDefault("backend", "memcached")
	v.SetDefault("codec", "")
	v.SetDefault("namespace", "")
	v.SetDefault("namespace_separator", "")
	v.SetDefault("default_ttl", "")
	v.SetDefault("timeout", "")
	v.SetDefault("max_idle_conns", 0)
	v.SetDefault("max_value_size", 0)
	v.SetDefault("string_return_types", false)
	v.SetDefault("log_level", "info")
}

// Load reads path (yaml, json or toml; optional) and overlays the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Servers = splitServers(cfg.Servers)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the duration fields.
func (c *Config) Validate() error {
	if _, err := c.TTL(); err != nil {
		return err
	}
	if _, err := client.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	return nil
}

// TTL is DefaultTTL parsed; zero when unset.
func (c *Config) TTL() (time.Duration, error) {
	d, err := client.ParseDuration(c.DefaultTTL)
	if err != nil {
		return 0, fmt.Errorf("default_ttl: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("default_ttl: negative duration %q", c.DefaultTTL)
	}
	return d, nil
}

// Args returns the constructor arguments for railcache.New: the servers followed by
// an options map holding only the settings that were given.
func (c *Config) Args() []any {
	args := make([]any, 0, 2)
	if len(c.Servers) > 0 {
		args = append(args, append([]string(nil), c.Servers...))
	}

	opts := railcache.Options{}
	put := func(k, v string) {
		if v != "" {
			opts[k] = v
		}
	}
	put("backend", c.Backend)
	put("codec", c.Codec)
	put("namespace", c.Namespace)
	put("namespace_separator", c.NamespaceSeparator)
	if d, err := c.TTL(); err == nil && c.DefaultTTL != "" {
		opts["default_ttl"] = int(d / time.Second)
	}
	if d, err := client.ParseDuration(c.Timeout); err == nil && c.Timeout != "" {
		put("timeout", d.String())
	}
	if c.MaxIdleConns > 0 {
		opts["max_idle_conns"] = c.MaxIdleConns
	}
	if c.MaxValueSize > 0 {
		opts["max_value_size"] = c.MaxValueSize
	}
	// the adapter checks presence, so false must be left out
	if c.StringReturnTypes {
		opts["string_return_types"] = true
	}
	return append(args, opts)
}

func splitServers(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, part)
		}
	}
	return out
}

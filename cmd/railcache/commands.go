package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/railcache"
	"github.com/unkn0wn-root/railcache/client"
	"github.com/unkn0wn-root/railcache/config"
	rzap "github.com/unkn0wn-root/railcache/log/zap"
)

// opener builds the adapter a command runs against.
type opener func(cfg railcache.Config, args ...any) (*railcache.Adapter, error)

type globals struct {
	configPath string
	servers    []string
	namespace  string
	backend    string
	verbose    bool
}

func newRootCmd(open opener) *cobra.Command {
	if open == nil {
		open = client.DialWith
	}
	g := &globals{}
	root := &cobra.Command{
		Use:           "railcache",
		Short:         "Read and write cache entries through the railcache adapter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (yaml, json or toml)")
	pf.StringSliceVar(&g.servers, "servers", nil, "server addresses, overrides the config file")
	pf.StringVar(&g.namespace, "namespace", "", "key namespace")
	pf.StringVar(&g.backend, "backend", "", "memcached, redis, bigcache, ristretto or kioshun")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log translated client errors")

	run := func(fn func(cmd *cobra.Command, rc *railcache.Adapter, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			rc, log, err := g.open(open)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck
			defer rc.Close(cmd.Context())
			return fn(cmd, rc, args)
		}
	}

	root.AddCommand(
		getCmd(run),
		setCmd(run, false),
		setCmd(run, true),
		deleteCmd(run),
		existCmd(run),
		fetchCmd(run),
		flushCmd(run),
	)
	return root
}

func (g *globals) open(open opener) (*railcache.Adapter, *zap.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	if len(g.servers) > 0 {
		cfg.Servers = g.servers
	}
	if g.namespace != "" {
		cfg.Namespace = g.namespace
	}
	if g.backend != "" {
		cfg.Backend = g.backend
	}

	level := zapcore.InfoLevel
	if g.verbose {
		level = zapcore.DebugLevel
	} else if l, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		level = l
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	log, err := zc.Build()
	if err != nil {
		return nil, nil, err
	}

	rc, err := open(railcache.Config{Logger: rzap.New(log)}, cfg.Args()...)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	if !rc.Active() {
		log.Warn("no servers configured")
	}
	return rc, log, nil
}

type runner func(fn func(cmd *cobra.Command, rc *railcache.Adapter, args []string) error) func(*cobra.Command, []string) error

func getCmd(run runner) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "get KEY [KEY...]",
		Short: "Print cached values; missing keys print nothing",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(func(cmd *cobra.Command, rc *railcache.Adapter, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				if v := rc.Get(cmd.Context(), args[0], raw); v != nil {
					printValue(out, v)
				}
				return nil
			}
			found := rc.GetMulti(cmd.Context(), args, raw)
			for _, k := range args {
				if v, ok := found[k]; ok {
					fmt.Fprintf(out, "%s\t", k)
					printValue(out, v)
				}
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print stored bytes without decoding")
	return cmd
}

func setCmd(run runner, add bool) *cobra.Command {
	var (
		ttl string
		raw bool
	)
	use, short := "set KEY VALUE", "Store a value"
	if add {
		use, short = "add KEY VALUE", "Store a value only if the key is absent"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, rc *railcache.Adapter, args []string) error {
			opts := railcache.Options{}
			if ttl != "" {
				d, err := client.ParseDuration(ttl)
				if err != nil {
					return fmt.Errorf("--ttl: %w", err)
				}
				opts["ttl"] = d
			}
			if add {
				fmt.Fprintln(cmd.OutOrStdout(), rc.Add(cmd.Context(), args[0], args[1], opts, raw))
				return nil
			}
			opts["raw"] = raw
			fmt.Fprintln(cmd.OutOrStdout(), rc.Write(cmd.Context(), args[0], args[1], opts))
			return nil
		}),
	}
	cmd.Flags().StringVar(&ttl, "ttl", "", "time to live, seconds or a duration such as 1h or 7d")
	cmd.Flags().BoolVar(&raw, "raw", false, "store the value as plain bytes")
	return cmd
}

func deleteCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY...",
		Short: "Delete keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(func(cmd *cobra.Command, rc *railcache.Adapter, args []string) error {
			for _, k := range args {
				rc.Delete(cmd.Context(), k)
			}
			return nil
		}),
	}
}

func existCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "exist KEY",
		Short: "Print whether KEY is cached",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, rc *railcache.Adapter, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), rc.Exist(cmd.Context(), args[0]))
			return nil
		}),
	}
}

func fetchCmd(run runner) *cobra.Command {
	var ttl string
	cmd := &cobra.Command{
		Use:   "fetch KEY DEFAULT",
		Short: "Print KEY, caching DEFAULT first when it is missing",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, rc *railcache.Adapter, args []string) error {
			opts := railcache.Options{}
			if ttl != "" {
				d, err := client.ParseDuration(ttl)
				if err != nil {
					return fmt.Errorf("--ttl: %w", err)
				}
				opts["expires_in"] = d
			}
			v := rc.Fetch(cmd.Context(), args[0], func() any { return args[1] }, opts)
			printValue(cmd.OutOrStdout(), v)
			return nil
		}),
	}
	cmd.Flags().StringVar(&ttl, "ttl", "", "time to live for a computed value")
	return cmd
}

func flushCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Drop every entry",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, rc *railcache.Adapter, _ []string) error {
			return rc.Flush(cmd.Context())
		}),
	}
}

func printValue(w io.Writer, v any) {
	if b, ok := v.([]byte); ok {
		fmt.Fprintln(w, string(b))
		return
	}
	fmt.Fprintln(w, v)
}

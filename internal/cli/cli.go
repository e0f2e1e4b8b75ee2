// Package cli implements the costgraph command-line interface.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/costgraph/pkg/buildinfo"
	"github.com/matzehuels/costgraph/pkg/cache"
	"github.com/matzehuels/costgraph/pkg/config"
	errs "github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/httputil"
	"github.com/matzehuels/costgraph/pkg/integrations/pipelines"
	"github.com/matzehuels/costgraph/pkg/pipeline"
	"github.com/matzehuels/costgraph/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "costgraph"

	// connectTimeout bounds dialing redis and mongo at startup.
	connectTimeout = 5 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	flags globalFlags
	cfg   *config.Config

	// newSource builds the pipeline data source. Tests replace it.
	newSource func(c cache.Cache, cfg *config.Config) pipeline.Source
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath   string
	apiURL       string
	cacheBackend string
	noCache      bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		newSource: defaultSource,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "costgraph visualizes cloud data pipelines and compares their regional costs",
		Long: `costgraph fetches a data pipeline's resource graph and per-region cost
records from the pipeline API, renders the graph with animated data flow and
ranks regions by total cost.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/costgraph/config.toml)")
	pf.StringVar(&c.flags.apiURL, "api", "", "pipeline API base URL (overrides config)")
	pf.StringVar(&c.flags.cacheBackend, "cache-backend", "", "response cache: file, redis, none (overrides config)")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable the response cache")

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.costCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.pipelinesCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// config loads the configuration once and applies flag overrides.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return nil, err
	}
	if c.flags.apiURL != "" {
		if err := errs.ValidateURL(c.flags.apiURL); err != nil {
			return nil, err
		}
		cfg.APIBaseURL = c.flags.apiURL
	}
	if c.flags.cacheBackend != "" {
		cfg.Cache.Backend = c.flags.cacheBackend
	}
	if c.flags.noCache {
		cfg.Cache.Backend = config.CacheNone
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner wires the response cache, the pipeline client and the history
// store into a pipeline runner. Callers must Close the runner.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	ch := c.newCache(ctx, cfg)
	st, err := c.newStore(ctx, cfg)
	if err != nil {
		ch.Close()
		return nil, err
	}
	return pipeline.NewRunner(c.newSource(ch, cfg), st, ch, keyer(cfg), c.Logger), nil
}

func defaultSource(ch cache.Cache, cfg *config.Config) pipeline.Source {
	client := pipelines.NewClient(ch, cfg.APIBaseURL, cfg.Cache.TTL.Duration).
		WithRetry(retryPolicy(cfg.RetryAttempts))
	client.SetKeyer(keyer(cfg))
	return client
}

func keyer(cfg *config.Config) cache.Keyer {
	return cache.NewNamespace(nil, cfg.Cache.Prefix)
}

// retryPolicy returns a backoff policy for n attempts. One attempt means
// failures surface immediately and the user retries.
func retryPolicy(n int) httputil.Policy {
	if n <= 1 {
		return httputil.NoRetry
	}
	p := httputil.DefaultPolicy
	p.Attempts = n
	return p
}

// newCache opens the configured cache. A cache that cannot be opened is
// replaced by a null cache with a warning.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) cache.Cache {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cfg.Cache.RedisAddr, DB: cfg.Cache.RedisDB})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache()
		}
		return rc
	case config.CacheFile:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache()
		}
		return fc
	default:
		return cache.NewNullCache()
	}
}

// newStore opens MongoDB when a URI is configured and otherwise keeps
// history in memory for the life of the process.
func (c *CLI) newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Store.MongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.Database)
}

// =============================================================================
// Options Helpers
// =============================================================================

// runFlags are the pipeline selection flags shared by data commands.
type runFlags struct {
	provider  string
	pathsFile string
	costsFile string
	refresh   bool
}

func (f *runFlags) register(cmd *cobra.Command, withFiles bool) {
	cmd.Flags().StringVarP(&f.provider, "provider", "p", errs.ProviderAWS, "cloud provider: AWS, Azure, GCP, Multi-Cloud")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass the response cache")
	if withFiles {
		cmd.Flags().StringVar(&f.pathsFile, "paths", "", "read graph paths from a saved JSON response instead of the API")
		cmd.Flags().StringVar(&f.costsFile, "costs", "", "read cost records from a saved JSON response instead of the API")
	}
}

func (f *runFlags) fromFiles() bool {
	return f.pathsFile != "" || f.costsFile != ""
}

// loadResult runs a pipeline from the API, recording it in history, or
// from saved responses when file flags are set.
func (c *CLI) loadResult(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, f runFlags) (*pipeline.Result, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	if f.fromFiles() {
		snap, err := pipeline.ReadSnapshot(opts.Pipeline, opts.Provider, f.pathsFile, f.costsFile)
		if err != nil {
			return nil, err
		}
		return runner.Process(ctx, snap, opts)
	}
	opts.Record = true
	return runner.Execute(ctx, opts)
}

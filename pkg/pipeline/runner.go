package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/costgraph/pkg/cache"
	"github.com/matzehuels/costgraph/pkg/cost"
	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/integrations/pipelines"
	"github.com/matzehuels/costgraph/pkg/observability"
	"github.com/matzehuels/costgraph/pkg/store"
)

// Source loads raw pipeline data. [*pipelines.Client] is the production
// implementation.
type Source interface {
	Load(ctx context.Context, pipeline, provider string, refresh bool) (*pipelines.Snapshot, error)
}

// Runner encapsulates run execution with history and view caching.
// Both CLI and server use it to avoid duplicating that logic.
//
// The Runner doesn't store results; multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Source Source
	Store  store.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil store disables history, a nil cache
// disables view caching, a nil keyer uses [cache.DefaultKeyer] and a nil
// logger uses [log.Default].
func NewRunner(src Source, st store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: src,
		Store:  st,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute loads a pipeline and derives its graph and cost views. With
// opts.Record set, a successful run is saved in the store; a store failure
// is logged and does not fail the run.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	if r.Source == nil {
		return nil, fmt.Errorf("runner has no source")
	}

	loadStart := time.Now()
	snap, err := r.Source.Load(ctx, opts.Pipeline, opts.Provider, opts.Refresh)
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(loadStart)

	r.Logger.Info("fetched pipeline data",
		"pipeline", opts.Pipeline,
		"provider", opts.Provider,
		"paths", len(snap.Paths),
		"costs", len(snap.Costs),
		"duration", loadTime)

	res, err := r.Process(ctx, snap, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.LoadTime = loadTime

	if opts.Record {
		r.record(ctx, res)
	}
	return res, nil
}

// Process normalizes and aggregates an already loaded snapshot, e.g. one
// read from files with [ReadSnapshot]. Nothing is recorded in the store.
func (r *Runner) Process(ctx context.Context, snap *pipelines.Snapshot, opts Options) (*Result, error) {
	hooks := observability.Pipeline()
	res := &Result{Snapshot: snap}

	start := time.Now()
	res.Graph = graph.Normalize(snap.Paths)
	res.Stats.NormalizeTime = time.Since(start)
	stats := res.Graph.Stats()
	res.Stats.Nodes, res.Stats.Edges, res.Stats.Regions = stats.Nodes, stats.Edges, stats.Regions
	hooks.OnNormalizeComplete(ctx, stats.Nodes, stats.Edges, res.Stats.NormalizeTime)

	r.Logger.Debug("normalized graph",
		"nodes", stats.Nodes,
		"edges", stats.Edges,
		"regions", stats.Regions)

	start = time.Now()
	agg, err := cost.Aggregate(snap.Costs, opts.AggregateOptions())
	res.Stats.AggregateTime = time.Since(start)
	res.Stats.Records = len(snap.Costs)
	hooks.OnAggregateComplete(ctx, len(snap.Costs), res.Stats.AggregateTime, err)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	res.Costs = agg

	if best, ok := agg.Best(); ok {
		r.Logger.Debug("ranked regions", "best", best.Region, "regions", len(agg.Ranked))
	}
	return res, nil
}

// History returns recorded runs for a pipeline, newest first. It returns an
// empty slice when the runner has no store.
func (r *Runner) History(ctx context.Context, pipeline, provider string, limit int) ([]store.Entry, error) {
	if r.Store == nil {
		return []store.Entry{}, nil
	}
	return r.Store.History(ctx, pipeline, provider, limit)
}

func (r *Runner) record(ctx context.Context, res *Result) {
	if r.Store == nil {
		return
	}
	entry := store.NewEntry(res.Snapshot.Pipeline, res.Snapshot.Provider, res.Snapshot.FetchedAt, res.Costs, res.Graph.Stats())
	if err := r.Store.Save(ctx, entry); err != nil {
		r.Logger.Warn("could not record snapshot", "error", err)
		return
	}
	res.SnapshotID = entry.ID
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	var firstErr error
	if r.Cache != nil {
		firstErr = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

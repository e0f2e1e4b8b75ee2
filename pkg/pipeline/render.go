package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/costgraph/pkg/cache"
	"github.com/matzehuels/costgraph/pkg/cost"
	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/render/nodelink"
)

// View is the JSON document served for a pipeline: the normalized graph,
// its legend and the cost comparison views.
type View struct {
	Pipeline  string            `json:"pipeline"`
	Provider  string            `json:"provider"`
	FetchedAt time.Time         `json:"fetchedAt"`
	Graph     *graph.Graph      `json:"graph"`
	Legend    []string          `json:"legend"`
	Positions graph.Positions   `json:"positions,omitempty"`
	Costs     *cost.Aggregation `json:"costs"`
}

// NewView assembles the view of a run. Positions are only computed when
// opts.WithPositions is set.
func NewView(ctx context.Context, res *Result, opts Options) *View {
	v := &View{
		Pipeline:  res.Snapshot.Pipeline,
		Provider:  res.Snapshot.Provider,
		FetchedAt: res.Snapshot.FetchedAt,
		Graph:     res.Graph,
		Legend:    res.Graph.Legend(),
		Costs:     res.Costs,
	}
	if opts.WithPositions {
		v.Positions = ComputeLayout(ctx, res.Graph, opts)
	}
	return v
}

// RenderView produces the view of a run in opts.Format without caching.
func RenderView(ctx context.Context, res *Result, opts Options) ([]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	switch opts.Format {
	case FormatSVG:
		dot := nodelink.ToDOT(res.Graph, nodelink.Options{
			Detailed:       opts.Detailed,
			ClusterRegions: opts.ClusterRegions,
		})
		return nodelink.RenderSVG(ctx, dot, graphviz.Layout(opts.Engine))
	case FormatJSON:
		return json.MarshalIndent(NewView(ctx, res, opts), "", "  ")
	default:
		return nil, fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

// RenderWithCacheInfo renders a view through the runner's cache and reports
// whether it was a cache hit. The key covers the fetched data, so a refreshed
// run with changed data never reuses a stale rendering. The trend is not part
// of the key and may come from an earlier aggregation.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Result, opts Options) ([]byte, bool, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	key := r.Keyer.ViewKey(res.Snapshot.Pipeline, res.Snapshot.Provider, r.viewKeyOpts(res, opts))
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		return data, true, nil
	}

	data, err := RenderView(ctx, res, opts)
	if err != nil {
		return nil, false, fmt.Errorf("render %s: %w", opts.Format, err)
	}
	_ = r.Cache.Set(ctx, key, data, TTLView)
	return data, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, res *Result, opts Options) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, res, opts)
	return data, err
}

func (r *Runner) viewKeyOpts(res *Result, opts Options) cache.ViewKeyOpts {
	k := opts.ViewKeyOpts()
	graphData, _ := graph.MarshalGraph(res.Graph)
	costData, _ := json.Marshal(res.Snapshot.Costs)
	k.DataHash = cache.Hash(append(graphData, costData...))
	return k
}

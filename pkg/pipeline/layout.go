package pipeline

import (
	"context"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/layout"
)

// ComputeLayout positions the nodes of g with the configured engine. If
// Graphviz fails, nodes are placed on a circle and a warning is logged;
// layout never fails a run.
func ComputeLayout(ctx context.Context, g *graph.Graph, opts Options) graph.Positions {
	opts.setLogger()
	engine := opts.Engine
	if engine == "" {
		engine = DefaultEngine
	}
	pos, fellBack := layout.Resolve(ctx, g, layout.Options{
		Engine: graphviz.Layout(engine),
		Logger: opts.Logger,
	})
	if !fellBack {
		opts.Logger.Debug("computed layout", "engine", engine, "nodes", len(pos))
	}
	return pos
}

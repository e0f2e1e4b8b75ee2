// Package render holds what the cost graph renderers share.
//
// # Overview
//
// Two renderers draw a normalized [graph.Graph]:
//
//   - [nodelink]: Graphviz DOT and SVG output for files and the HTTP server
//   - the terminal canvas of the watch command (internal/cli)
//
// Both color nodes by region with [RegionColor] so the same region looks the
// same everywhere.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.EngineFDP)
//
// [graph.Graph]: github.com/matzehuels/costgraph/pkg/graph.Graph
// [nodelink]: github.com/matzehuels/costgraph/pkg/render/nodelink
package render

// Package nodelink renders cost graphs as node-link diagrams with Graphviz.
//
// # Usage
//
// Convert a graph to DOT, then render it:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{ClusterRegions: true})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.EngineFDP)
//
// Nodes are filled by region (see render.RegionColor) and every edge carries
// its "$12.50" cost label. [RenderXDOT] returns the laid-out DOT source,
// which pkg/layout parses for node coordinates.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process, so no system Graphviz install is needed.
package nodelink

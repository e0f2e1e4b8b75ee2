// Package layout positions the nodes of a cost graph.
//
// [Compute] runs Graphviz's force-directed engine (fdp) in-process and reads
// node centers back from the laid-out DOT. [Circle] places nodes on a circle
// and is used whenever Graphviz cannot produce a layout. [Resolve] tries the
// former and falls back to the latter.
//
//	pos, fellBack := layout.Resolve(ctx, g, layout.Options{})
package layout

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/render/nodelink"
)

// Options configures layout.
type Options struct {
	// Engine is the Graphviz layout engine. Defaults to fdp.
	Engine graphviz.Layout

	// Radius of the fallback circle, in points. Defaults to 72 per node.
	Radius float64

	// Logger receives a warning when Resolve falls back. Optional.
	Logger *log.Logger
}

// Compute lays out g with Graphviz and returns every node's center in points
// with Y growing upward.
func Compute(ctx context.Context, g *graph.Graph, opts Options) (graph.Positions, error) {
	if g.IsEmpty() {
		return graph.Positions{}, nil
	}
	engine := opts.Engine
	if engine == "" {
		engine = nodelink.EngineFDP
	}

	out, err := nodelink.RenderXDOT(ctx, nodelink.ToDOT(g, nodelink.Options{}), engine)
	if err != nil {
		return nil, err
	}
	pos, err := ParseXDOT(out)
	if err != nil {
		return nil, err
	}
	for _, n := range g.Nodes {
		if _, ok := pos[n.ID]; !ok {
			return nil, fmt.Errorf("layout: node %s has no position", n.ID)
		}
	}
	return pos, nil
}

// ParseXDOT reads node "pos" attributes from laid-out DOT source.
func ParseXDOT(data []byte) (graph.Positions, error) {
	g, err := graphviz.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	defer g.Close()

	pos := graph.Positions{}
	n, err := g.FirstNode()
	for n != nil && err == nil {
		name, nerr := n.Name()
		if nerr != nil {
			return nil, fmt.Errorf("node name: %w", nerr)
		}
		if p, ok := ParsePos(n.GetStr("pos")); ok {
			pos[name] = p
		}
		n, err = g.NextNode(n)
	}
	if err != nil {
		return nil, fmt.Errorf("walk nodes: %w", err)
	}
	return pos, nil
}

// ParsePos parses a Graphviz point "x,y", optionally suffixed with "!".
func ParsePos(s string) (graph.Point, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "!")
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return graph.Point{}, false
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return graph.Point{}, false
	}
	// A third coordinate may follow in 3D layouts.
	ys, _, _ = strings.Cut(ys, ",")
	y, err := strconv.ParseFloat(strings.TrimSuffix(ys, "!"), 64)
	if err != nil {
		return graph.Point{}, false
	}
	return graph.Point{X: x, Y: y}, true
}

// Circle places nodes evenly on a circle in graph order, starting at the top
// and going clockwise.
func Circle(g *graph.Graph, radius float64) graph.Positions {
	pos := graph.Positions{}
	if g.IsEmpty() {
		return pos
	}
	n := len(g.Nodes)
	if radius <= 0 {
		radius = 72 * float64(n) / (2 * math.Pi)
		radius = math.Max(radius, 72)
	}
	if n == 1 {
		pos[g.Nodes[0].ID] = graph.Point{}
		return pos
	}
	for i, node := range g.Nodes {
		angle := math.Pi/2 - 2*math.Pi*float64(i)/float64(n)
		pos[node.ID] = graph.Point{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
	}
	return pos
}

// Resolve computes a Graphviz layout and falls back to [Circle] on failure.
// The second result reports whether the fallback was used.
func Resolve(ctx context.Context, g *graph.Graph, opts Options) (graph.Positions, bool) {
	pos, err := Compute(ctx, g, opts)
	if err == nil {
		return pos, false
	}
	if opts.Logger != nil {
		opts.Logger.Warn("graphviz layout failed, using circle layout", "error", err)
	}
	return Circle(g, opts.Radius), true
}

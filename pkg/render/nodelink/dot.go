package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/render"
)

// Graphviz layout engines.
const (
	EngineFDP = graphviz.FDP
	EngineDOT = graphviz.DOT
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds each node's state to its label.
	Detailed bool

	// ClusterRegions draws a labelled box around the nodes of each region.
	ClusterRegions bool
}

// ToDOT converts a cost graph to Graphviz DOT format.
// Nodes are filled with their region's color and edges are labelled with
// their cost in dollars. Parallel edges are kept.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=circle, style=filled, fontsize=12, fixedsize=false, margin=\"0.1,0.05\"];\n")
	buf.WriteString("  edge [fontsize=10, arrowsize=0.6];\n")
	buf.WriteString("\n")

	if opts.ClusterRegions {
		writeClusters(&buf, g, opts)
	} else {
		for _, n := range g.Nodes {
			writeNode(&buf, g, n, opts, "  ")
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q, tooltip=%q];\n", e.From, e.To, "$"+e.CostLabel, e.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeClusters(buf *bytes.Buffer, g *graph.Graph, opts Options) {
	byGroup := make(map[string][]graph.Node)
	var groups []string
	for _, n := range g.Nodes {
		if _, ok := byGroup[n.Group]; !ok {
			groups = append(groups, n.Group)
		}
		byGroup[n.Group] = append(byGroup[n.Group], n)
	}

	for i, group := range groups {
		if group == graph.UnknownRegion {
			for _, n := range byGroup[group] {
				writeNode(buf, g, n, opts, "  ")
			}
			continue
		}
		fmt.Fprintf(buf, "  subgraph \"cluster_%d\" {\n", i)
		fmt.Fprintf(buf, "    label=%q;\n", group)
		buf.WriteString("    style=\"rounded,dashed\";\n")
		for _, n := range byGroup[group] {
			writeNode(buf, g, n, opts, "    ")
		}
		buf.WriteString("  }\n")
	}
}

func writeNode(buf *bytes.Buffer, g *graph.Graph, n graph.Node, opts Options, indent string) {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
		fmt.Sprintf("fillcolor=%q", render.RegionColor(g.GroupIndex(n.Group))),
		fmt.Sprintf("tooltip=%q", n.Group),
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, strings.Join(attrs, ", "))
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed || n.Key.State == "" {
		return n.Label
	}
	return n.Label + "\n" + n.Key.State
}

// RenderSVG lays out a DOT graph with engine and renders it to SVG.
func RenderSVG(ctx context.Context, dot string, engine graphviz.Layout) ([]byte, error) {
	out, err := renderFormat(ctx, dot, engine, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderXDOT lays out a DOT graph with engine and returns DOT source
// annotated with positions.
func RenderXDOT(ctx context.Context, dot string, engine graphviz.Layout) ([]byte, error) {
	return renderFormat(ctx, dot, engine, graphviz.XDOT)
}

func renderFormat(ctx context.Context, dot string, engine graphviz.Layout, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	if engine != "" {
		gv.SetLayout(engine)
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

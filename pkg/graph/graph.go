package graph

import (
	"slices"
	"strconv"
)

// =============================================================================
// Normalization
// =============================================================================

// Normalize converts path records into a deduplicated graph.
//
// Each distinct (name, state, region) triple becomes one node, in order of
// first appearance with a record's start node before its end node. Every
// record becomes exactly one edge, so repeated relationships between the same
// pair of nodes are kept as parallel edges with distinct IDs. Regions lists
// the distinct regions of all endpoints in order of first appearance, with a
// missing region counted as [UnknownRegion]; [Graph.Legend] drops it.
//
// Node IDs are "node-<name>-<state>-<region>". When two different triples
// render to the same ID (a "-" inside a field can cause this), later triples
// get a "#2", "#3", ... suffix so IDs stay unique.
//
// An empty or nil input yields an empty graph.
func Normalize(records []PathRecord) *Graph {
	b := newBuilder(len(records))
	for i, rec := range records {
		b.addRegion(rec.StartNode.Region)
		b.addRegion(rec.EndNode.Region)
		from := b.addNode(rec.StartNode)
		to := b.addNode(rec.EndNode)
		b.g.Edges = append(b.g.Edges, newEdge(i, from, to, rec.RelationshipProperties))
	}
	b.g.reindex()
	return b.g
}

type builder struct {
	g       *Graph
	ids     map[NodeKey]string
	taken   map[string]bool
	regions map[string]bool
}

func newBuilder(n int) *builder {
	return &builder{
		g: &Graph{
			Nodes:   make([]Node, 0, n),
			Edges:   make([]Edge, 0, n),
			Regions: []string{},
		},
		ids:     make(map[NodeKey]string, n),
		taken:   make(map[string]bool, n),
		regions: make(map[string]bool),
	}
}

func (b *builder) addRegion(region string) {
	if region == "" {
		region = UnknownRegion
	}
	if b.regions[region] {
		return
	}
	b.regions[region] = true
	b.g.Regions = append(b.g.Regions, region)
}

func (b *builder) addNode(r Resource) string {
	key := r.Key()
	if id, ok := b.ids[key]; ok {
		return id
	}

	id := key.ID()
	for n := 2; b.taken[id]; n++ {
		id = key.ID() + "#" + strconv.Itoa(n)
	}
	b.ids[key] = id
	b.taken[id] = true

	group := r.Region
	if group == "" {
		group = UnknownRegion
	}
	b.g.Nodes = append(b.g.Nodes, Node{
		ID:          id,
		Key:         key,
		Label:       r.Name,
		Group:       group,
		DetailsJSON: marshalDetails(r.Attrs),
		Details:     r.Attrs,
	})
	return id
}

func newEdge(index int, from, to string, rel Relationship) Edge {
	return Edge{
		ID:          "edge-" + from + "-" + to + "-" + strconv.Itoa(index),
		From:        from,
		To:          to,
		CostLabel:   FormatCost(rel.Cost),
		DetailsJSON: marshalDetails(rel.Attrs),
		Cost:        rel.Cost,
		Properties:  rel.Attrs,
	}
}

// FormatCost renders a relationship cost with two decimals. A missing cost
// renders as "0.00", the same as an explicit zero; use [Edge.Cost] to tell
// them apart.
func FormatCost(cost *float64) string {
	if cost == nil {
		return "0.00"
	}
	return strconv.FormatFloat(*cost, 'f', 2, 64)
}

// =============================================================================
// Queries
// =============================================================================

// Legend returns the regions to show in a legend, in order of first
// appearance, without [UnknownRegion].
func (g *Graph) Legend() []string {
	out := make([]string, 0, len(g.Regions))
	for _, r := range g.Regions {
		if r != UnknownRegion {
			out = append(out, r)
		}
	}
	return out
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	if g.nodeIndex == nil {
		g.reindex()
	}
	i, ok := g.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return &g.Nodes[i], true
}

// Edge returns the edge with the given ID.
func (g *Graph) Edge(id string) (*Edge, bool) {
	if g.edgeIndex == nil {
		g.reindex()
	}
	i, ok := g.edgeIndex[id]
	if !ok {
		return nil, false
	}
	return &g.Edges[i], true
}

// GroupIndex returns the position of a node group among the graph's regions,
// or -1 for [UnknownRegion]. Renderers use it to pick a stable color.
func (g *Graph) GroupIndex(group string) int {
	return slices.Index(g.Legend(), group)
}

// Stats returns node, edge and region counts.
func (g *Graph) Stats() Stats {
	return Stats{Nodes: len(g.Nodes), Edges: len(g.Edges), Regions: len(g.Regions)}
}

// IsEmpty reports whether the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return g == nil || len(g.Nodes) == 0
}

func (g *Graph) reindex() {
	g.nodeIndex = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.nodeIndex[n.ID] = i
	}
	g.edgeIndex = make(map[string]int, len(g.Edges))
	for i, e := range g.Edges {
		g.edgeIndex[e.ID] = i
	}
}

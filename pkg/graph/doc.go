// Package graph normalizes pipeline path records into a node/edge model.
//
// The pipeline API describes a pipeline as a list of path records, each a
// relationship between a start resource and an end resource. Resources carry
// arbitrary attributes; costgraph reads name, region and state and keeps the
// rest for display.
//
// # Normalization
//
// [Normalize] deduplicates resources by their (name, state, region) triple and
// turns every record into one edge:
//
//	records, _ := graph.ReadPathsFile("paths.json")
//	g := graph.Normalize(records)
//	for _, e := range g.Edges {
//	    fmt.Println(e.From, "->", e.To, "$"+e.CostLabel)
//	}
//
// Nodes are grouped by region. Resources without a region fall into
// [UnknownRegion], which is excluded from [Graph.Legend].
//
// # Geometry
//
// [Point] and [Positions] describe laid-out node centers. They are produced by
// pkg/layout and consumed by renderers and the flow animator.
//
// # Concurrency
//
// A Graph is not mutated after Normalize returns and is safe for concurrent
// reads.
package graph

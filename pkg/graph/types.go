package graph

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/costgraph/pkg/details"
)

// =============================================================================
// Constants
// =============================================================================

// UnknownRegion is the group assigned to resources without a region.
// It never appears in a [Graph.Legend].
const UnknownRegion = "Unknown"

// Payload keys the normalizer reads.
const (
	keyName   = "name"
	keyRegion = "region"
	keyState  = "state"
	keyCost   = "cost"
)

// =============================================================================
// Path Records - Upstream Wire Format
// =============================================================================

// PathRecord is one step of a pipeline path as returned by the graph endpoint:
// a relationship from StartNode to EndNode.
type PathRecord struct {
	StartNode              Resource     `json:"startNode"`
	EndNode                Resource     `json:"endNode"`
	RelationshipType       string       `json:"relationshipType,omitempty"`
	RelationshipProperties Relationship `json:"relationshipProperties"`
}

// Resource is a node endpoint of a path record. Name, Region and State are
// read from the payload; a missing or null field reads as "". Attrs keeps the
// complete payload in its original key order.
type Resource struct {
	Name   string
	Region string
	State  string
	Attrs  *details.Map
}

// NewResource builds a resource whose payload holds the non-empty fields.
func NewResource(name, region, state string) Resource {
	m := details.NewMap()
	m.Set(keyName, details.String(name))
	if region != "" {
		m.Set(keyRegion, details.String(region))
	}
	if state != "" {
		m.Set(keyState, details.String(state))
	}
	return Resource{Name: name, Region: region, State: state, Attrs: m}
}

// Key returns the structural identity of the resource.
func (r Resource) Key() NodeKey {
	return NodeKey{Name: r.Name, State: r.State, Region: r.Region}
}

// MarshalJSON encodes the original payload.
func (r Resource) MarshalJSON() ([]byte, error) {
	if r.Attrs == nil {
		return NewResource(r.Name, r.Region, r.State).Attrs.MarshalJSON()
	}
	return r.Attrs.MarshalJSON()
}

// UnmarshalJSON decodes a resource payload of arbitrary shape.
func (r *Resource) UnmarshalJSON(data []byte) error {
	m, err := details.Parse(data)
	if err != nil {
		return err
	}
	*r = Resource{
		Name:   m.GetString(keyName),
		Region: m.GetString(keyRegion),
		State:  m.GetString(keyState),
		Attrs:  m,
	}
	return nil
}

// Relationship holds the properties of a path step. Cost is nil when the
// payload has no numeric "cost".
type Relationship struct {
	Cost  *float64
	Attrs *details.Map
}

// NewRelationship builds a relationship with an optional cost.
func NewRelationship(cost *float64) Relationship {
	m := details.NewMap()
	if cost != nil {
		m.Set(keyCost, details.Number(*cost))
	}
	return Relationship{Cost: cost, Attrs: m}
}

// MarshalJSON encodes the original payload. A null payload stays null.
func (r Relationship) MarshalJSON() ([]byte, error) {
	if r.Attrs == nil && r.Cost == nil {
		return []byte("null"), nil
	}
	if r.Attrs == nil {
		return NewRelationship(r.Cost).Attrs.MarshalJSON()
	}
	return r.Attrs.MarshalJSON()
}

// UnmarshalJSON decodes relationship properties. Null leaves Attrs nil.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*r = Relationship{}
		return nil
	}
	m, err := details.Parse(data)
	if err != nil {
		return err
	}
	r.Attrs = m
	r.Cost = nil
	if c, ok := m.GetNumber(keyCost); ok {
		r.Cost = &c
	}
	return nil
}

// =============================================================================
// Normalized Graph
// =============================================================================

// NodeKey is the structural identity of a node. Two resources with equal keys
// are the same node.
type NodeKey struct {
	Name   string `json:"name"`
	State  string `json:"state"`
	Region string `json:"region"`
}

// ID returns the display identifier "node-<name>-<state>-<region>".
// [Normalize] suffixes it when two keys render alike, so look nodes up by
// [Node.ID] rather than rebuilding IDs from keys.
func (k NodeKey) ID() string {
	return "node-" + k.Name + "-" + k.State + "-" + k.Region
}

// Graph is the normalized node/edge model of a pipeline's paths.
type Graph struct {
	Nodes   []Node   `json:"nodes"`
	Edges   []Edge   `json:"edges"`
	Regions []string `json:"regions"`

	nodeIndex map[string]int
	edgeIndex map[string]int
}

// Node is a unique resource in the graph.
type Node struct {
	ID          string       `json:"id"`
	Key         NodeKey      `json:"key"`
	Label       string       `json:"label"`
	Group       string       `json:"group"`
	DetailsJSON string       `json:"detailsJson"`
	Details     *details.Map `json:"-"`
}

// Edge is one path record drawn between two nodes.
type Edge struct {
	ID          string       `json:"id"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	CostLabel   string       `json:"costLabel"`
	DetailsJSON string       `json:"detailsJson"`
	Cost        *float64     `json:"cost,omitempty"`
	Properties  *details.Map `json:"-"`
}

// Stats summarizes a graph.
type Stats struct {
	Nodes   int `json:"nodes"`
	Edges   int `json:"edges"`
	Regions int `json:"regions"`
}

// marshalDetails serializes a payload for DetailsJSON. A nil payload is
// "null", like the absent or null value it came from.
func marshalDetails(m *details.Map) string {
	if m == nil {
		return "null"
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}

package cost

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/costgraph/pkg/details"
)

// Record is the cost of running a pipeline in one region, as returned by the
// cost endpoint. TotalCost is nil when the upstream omitted it.
type Record struct {
	Region      string     `json:"region"`
	TotalCost   *float64   `json:"totalCost"`
	Breakdown   Breakdown  `json:"costBreakdown"`
	PathDetails []PathStep `json:"pathDetails,omitempty"`
}

// PathStep identifies one resource on the priced path.
type PathStep struct {
	Name string `json:"name"`
	ID   any    `json:"id,omitempty"`
}

// Amount returns a pointer to v, for building records in code.
func Amount(v float64) *float64 { return &v }

// Total returns the total cost, or 0 when it is missing.
func (r Record) Total() float64 {
	if r.TotalCost == nil {
		return 0
	}
	return *r.TotalCost
}

// UnmarshalJSON decodes a record, reading a null region as empty.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Region      *string    `json:"region"`
		TotalCost   *float64   `json:"totalCost"`
		Breakdown   Breakdown  `json:"costBreakdown"`
		PathDetails []PathStep `json:"pathDetails"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		TotalCost:   raw.TotalCost,
		Breakdown:   raw.Breakdown,
		PathDetails: raw.PathDetails,
	}
	if raw.Region != nil {
		r.Region = *raw.Region
	}
	return nil
}

// LineItem is the cost of one service within a region.
type LineItem struct {
	Service string
	Amount  float64
}

// Breakdown is a region's per-service costs in upstream key order.
type Breakdown []LineItem

// Services returns the service names in order.
func (b Breakdown) Services() []string {
	out := make([]string, len(b))
	for i, li := range b {
		out[i] = li.Service
	}
	return out
}

// Lookup returns the amount for service.
func (b Breakdown) Lookup(service string) (float64, bool) {
	for _, li := range b {
		if li.Service == service {
			return li.Amount, true
		}
	}
	return 0, false
}

// MarshalJSON encodes the breakdown as an object in line-item order.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, li := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(li.Service)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(li.Amount)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of service amounts, keeping key order.
// Null amounts are skipped. Non-numeric amounts are an error.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	m, err := details.Parse(data)
	if err != nil {
		return err
	}
	out := make(Breakdown, 0, m.Len())
	for _, e := range m.Entries() {
		if e.Value.IsNull() {
			continue
		}
		amount, ok := e.Value.AsNumber()
		if !ok {
			return fmt.Errorf("cost breakdown: %q is %s, not a number", e.Key, e.Value.Kind())
		}
		out = append(out, LineItem{Service: e.Key, Amount: amount})
	}
	*b = out
	return nil
}

package cost

import (
	"bytes"
	"encoding/json"
)

// ServiceRow is one service's cost in every region. Cells follow ranked
// region order; a region without the service has a nil Amount.
type ServiceRow struct {
	Service string `json:"service"`
	Cells   []Cell `json:"cells"`
}

// Cell is one region's amount for a service.
type Cell struct {
	Region string   `json:"region"`
	Amount *float64 `json:"amount"`
}

// Amount returns the region's amount, or nil when the region lacks the service.
func (r ServiceRow) Amount(region string) *float64 {
	for _, c := range r.Cells {
		if c.Region == region {
			return c.Amount
		}
	}
	return nil
}

// MarshalJSON encodes the row as {"service": ..., "<region>": amount, ...},
// leaving out regions without the service.
func (r ServiceRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	name, err := json.Marshal(r.Service)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"service":`)
	buf.Write(name)
	for _, c := range r.Cells {
		if c.Amount == nil {
			continue
		}
		k, err := json.Marshal(c.Region)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(*c.Amount)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func serviceRows(ranked []Ranked, union bool) []ServiceRow {
	services := ranked[0].Breakdown.Services()
	if union {
		services = unionServices(ranked)
	}

	rows := make([]ServiceRow, 0, len(services))
	for _, svc := range services {
		row := ServiceRow{Service: svc, Cells: make([]Cell, len(ranked))}
		for i, r := range ranked {
			row.Cells[i] = Cell{Region: r.Region}
			if amount, ok := r.Breakdown.Lookup(svc); ok {
				row.Cells[i].Amount = &amount
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func unionServices(ranked []Ranked) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range ranked {
		for _, svc := range r.Breakdown.Services() {
			if !seen[svc] {
				seen[svc] = true
				out = append(out, svc)
			}
		}
	}
	return out
}

// Package store keeps a history of loaded cost snapshots.
//
// Each successful load produces one [Entry] with the ranked regional totals
// at fetch time. Unlike the synthetic trend computed by package cost, the
// history is real: it only contains what the API actually returned.
//
// Two backends are provided: [MongoStore] for persistent history shared
// between the CLI and the server, and [MemoryStore] for a single process.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/costgraph/pkg/cost"
	"github.com/matzehuels/costgraph/pkg/graph"
)

// DefaultHistoryLimit is used when History is called with limit <= 0.
const DefaultHistoryLimit = 20

// Store persists snapshot entries.
type Store interface {
	// Save records an entry. Entries without an ID are assigned one.
	Save(ctx context.Context, e *Entry) error

	// History returns the most recent entries for a pipeline and provider,
	// newest first.
	History(ctx context.Context, pipeline, provider string, limit int) ([]Entry, error)

	Close(ctx context.Context) error
}

// Entry is one recorded load.
type Entry struct {
	ID         string        `bson:"_id" json:"id"`
	Pipeline   string        `bson:"pipeline" json:"pipeline"`
	Provider   string        `bson:"provider" json:"provider"`
	FetchedAt  time.Time     `bson:"fetchedAt" json:"fetchedAt"`
	BestRegion string        `bson:"bestRegion,omitempty" json:"bestRegion,omitempty"`
	Totals     []RegionTotal `bson:"totals" json:"totals"`
	Nodes      int           `bson:"nodes" json:"nodes"`
	Edges      int           `bson:"edges" json:"edges"`
}

// RegionTotal is a region's total cost in rank order.
type RegionTotal struct {
	Region string  `bson:"region" json:"region"`
	Total  float64 `bson:"total" json:"total"`
}

// NewEntry summarizes a load for storage.
func NewEntry(pipeline, provider string, fetchedAt time.Time, agg *cost.Aggregation, stats graph.Stats) *Entry {
	e := &Entry{
		ID:        uuid.NewString(),
		Pipeline:  pipeline,
		Provider:  provider,
		FetchedAt: fetchedAt.UTC(),
		Totals:    []RegionTotal{},
		Nodes:     stats.Nodes,
		Edges:     stats.Edges,
	}
	if agg == nil {
		return e
	}
	if best, ok := agg.Best(); ok {
		e.BestRegion = best.Region
	}
	for _, r := range agg.Ranked {
		e.Totals = append(e.Totals, RegionTotal{Region: r.Region, Total: r.Total()})
	}
	return e
}

// Total returns the recorded total for region.
func (e Entry) Total(region string) (float64, bool) {
	for _, t := range e.Totals {
		if t.Region == region {
			return t.Total, true
		}
	}
	return 0, false
}

func ensureID(e *Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return limit
}

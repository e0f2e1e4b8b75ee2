// Package pipeline provides the load → normalize → aggregate → render flow
// shared by the CLI and the HTTP server.
//
// By centralizing this logic, every entry point validates input, reports
// hooks, records history and caches rendered views the same way.
//
// # Architecture
//
// A run consists of four stages:
//
//  1. Load: fetch graph paths and cost records for a pipeline and provider
//  2. Normalize: build the de-duplicated resource graph
//  3. Aggregate: rank regions and derive the cost comparison views
//  4. Render: produce a JSON view or an SVG diagram
//
// # Usage
//
//	runner := pipeline.NewRunner(client, store, viewCache, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Pipeline: "Smart Grid Analytics Platform",
//	    Provider: "AWS",
//	})
//	if err != nil {
//	    return err
//	}
//	svg, err := runner.Render(ctx, res, pipeline.Options{Format: pipeline.FormatSVG})
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/costgraph/pkg/cache"
	"github.com/matzehuels/costgraph/pkg/cost"
	errs "github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/integrations/pipelines"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultEngine is the Graphviz engine used for layout and SVG output.
const DefaultEngine = "fdp"

// TTLView is how long rendered views stay cached.
const TTLView = 10 * time.Minute

// Format constants for rendered views.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported view formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
}

// ValidEngines is the set of supported Graphviz engines.
var ValidEngines = map[string]bool{
	"fdp": true,
	"dot": true,
}

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options contains all configuration for one run.
type Options struct {
	// Load options
	Pipeline string `json:"pipeline"`
	Provider string `json:"provider"`
	Refresh  bool   `json:"refresh,omitempty"`
	Record   bool   `json:"record,omitempty"` // save the run in the history store

	// Aggregate options
	UnionServices bool `json:"union_services,omitempty"`

	// Render options
	Format         string `json:"format,omitempty"`
	Engine         string `json:"engine,omitempty"`
	ClusterRegions bool   `json:"cluster_regions,omitempty"`
	Detailed       bool   `json:"detailed,omitempty"`
	WithPositions  bool   `json:"with_positions,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a run.
type Result struct {
	Snapshot   *pipelines.Snapshot
	Graph      *graph.Graph
	Costs      *cost.Aggregation
	Stats      Stats
	SnapshotID string
}

// Stats contains run statistics.
type Stats struct {
	Nodes         int
	Edges         int
	Regions       int
	Records       int
	LoadTime      time.Duration
	NormalizeTime time.Duration
	AggregateTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, svg)", format)
	}
	return nil
}

// ValidateEngine checks that a layout engine is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid engine: %q (must be one of: fdp, dot)", engine)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForLoad checks the pipeline and provider.
func (o *Options) ValidateForLoad() error {
	if err := errs.ValidatePipelineName(o.Pipeline); err != nil {
		return err
	}
	if err := errs.ValidateProvider(o.Provider); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

// ValidateForRender applies render defaults and validates them.
func (o *Options) ValidateForRender() error {
	if o.Format == "" {
		o.Format = FormatJSON
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	o.setLogger()
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	return ValidateEngine(o.Engine)
}

// ValidateAndSetDefaults validates the options for a full run.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// ViewKeyOpts returns cache key options for a rendered view.
func (o *Options) ViewKeyOpts() cache.ViewKeyOpts {
	return cache.ViewKeyOpts{
		Format:         o.Format,
		Engine:         o.Engine,
		ClusterRegions: o.ClusterRegions,
		UnionServices:  o.UnionServices,
		Detailed:       o.Detailed,
		Positions:      o.WithPositions,
	}
}

// AggregateOptions returns the cost aggregation options.
func (o *Options) AggregateOptions() cost.Options {
	return cost.Options{UnionServices: o.UnionServices}
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("%d nodes, %d edges, %d regions, %d cost records", s.Nodes, s.Edges, s.Regions, s.Records)
}

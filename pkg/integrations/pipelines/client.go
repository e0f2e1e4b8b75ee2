package pipelines

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/costgraph/pkg/cache"
	"github.com/matzehuels/costgraph/pkg/cost"
	errs "github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/httputil"
	"github.com/matzehuels/costgraph/pkg/integrations"
	"github.com/matzehuels/costgraph/pkg/observability"
)

// FetchFailedMessage is the single message shown when a load fails.
const FetchFailedMessage = "Failed to fetch data"

// Snapshot is the joined result of one load.
type Snapshot struct {
	Pipeline  string             `json:"pipeline"`
	Provider  string             `json:"provider"`
	Paths     []graph.PathRecord `json:"paths"`
	Costs     []cost.Record      `json:"costs"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

// Client talks to the pipeline endpoints of the cost optimizer API.
//
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
	now     func() time.Time
}

// NewClient creates a client for the API at baseURL. A nil cache disables
// response caching.
func NewClient(c cache.Cache, baseURL string, ttl time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(c, "pipelines:", ttl, nil),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// WithRetry sets the retry policy and returns c.
func (c *Client) WithRetry(p httputil.Policy) *Client {
	c.SetRetry(p)
	return c
}

// Graph fetches the resource paths of a pipeline. A null body yields an
// empty slice.
func (c *Client) Graph(ctx context.Context, pipeline, provider string, refresh bool) ([]graph.PathRecord, error) {
	var paths []graph.PathRecord
	err := c.Cached(ctx, cacheKey("graph", pipeline, provider), refresh, &paths, func() error {
		paths = nil
		return c.Get(ctx, c.endpoint(pipeline, "graph", provider), &paths)
	})
	if err != nil {
		return nil, fmt.Errorf("graph %s (%s): %w", pipeline, provider, err)
	}
	if paths == nil {
		paths = []graph.PathRecord{}
	}
	return paths, nil
}

// Cost fetches the per-region cost records of a pipeline. Records are
// returned as sent; validation happens in [cost.Aggregate].
func (c *Client) Cost(ctx context.Context, pipeline, provider string, refresh bool) ([]cost.Record, error) {
	var records []cost.Record
	err := c.Cached(ctx, cacheKey("cost", pipeline, provider), refresh, &records, func() error {
		records = nil
		return c.Get(ctx, c.endpoint(pipeline, "cost", provider), &records)
	})
	if err != nil {
		return nil, fmt.Errorf("cost %s (%s): %w", pipeline, provider, err)
	}
	if records == nil {
		records = []cost.Record{}
	}
	return records, nil
}

// Load fetches graph and cost data concurrently. If either request fails,
// the whole load fails with FETCH_FAILED and no data is returned.
func (c *Client) Load(ctx context.Context, pipeline, provider string, refresh bool) (*Snapshot, error) {
	if strings.TrimSpace(pipeline) == "" {
		return nil, errs.New(errs.ErrCodeInvalidPipeline, "pipeline name cannot be empty")
	}

	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, pipeline, provider)
	start := time.Now()

	snap := &Snapshot{Pipeline: pipeline, Provider: provider}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		paths, err := c.Graph(gctx, pipeline, provider, refresh)
		snap.Paths = paths
		return err
	})
	g.Go(func() error {
		records, err := c.Cost(gctx, pipeline, provider, refresh)
		snap.Costs = records
		return err
	})

	err := g.Wait()
	hooks.OnFetchComplete(ctx, pipeline, provider, time.Since(start), err)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFetchFailed, err, FetchFailedMessage)
	}
	snap.FetchedAt = c.now().UTC()
	return snap, nil
}

func (c *Client) endpoint(pipeline, resource, provider string) string {
	q := url.Values{"cloudProvider": {provider}}
	return fmt.Sprintf("%s/api/v1/pipelines/%s/%s?%s", c.baseURL, url.PathEscape(pipeline), resource, q.Encode())
}

func cacheKey(resource, pipeline, provider string) string {
	return resource + ":" + pipeline + ":" + provider
}

// Package pkg provides the core libraries for costgraph, a cost-graph viewer
// for cloud data pipelines.
//
// # Overview
//
// costgraph reads two things about a pipeline from the pipeline API: the
// resource paths it is built from and one cost record per region. Paths
// become a node/edge graph that is laid out, rendered and animated; cost
// records become a ranked comparison with per-service breakdowns and a
// simulated monthly trend.
//
// # Architecture
//
//	Pipeline API (graph and cost endpoints)
//	         ↓
//	    [integrations/pipelines] (concurrent fetch, retry, cache)
//	         ↓
//	    [graph]  normalize paths      [cost]  rank regions
//	         ↓                              ↓
//	    [layout] + [render/nodelink]   tables, JSON
//	         ↓
//	    [flow] particles over the rendered edges
//
// [pipeline] runs these steps for the CLI and the HTTP [server], caching
// responses and rendered views in [cache] and recording runs in [store].
//
// # Main Packages
//
// [graph] - Path records, node deduplication, edge IDs and cost labels.
//
// [cost] - Region ranking, best option, service comparison, percentage
// differences and the twelve-month trend.
//
// [details] - Ordered attribute maps and their display formatting.
//
// [flow] - The particle animator and its host and scheduler contracts.
//
// [layout] - Graphviz positions with a circular fallback.
//
// [render/nodelink] - DOT, SVG and XDOT output via Graphviz.
//
// [integrations/pipelines] - The pipeline API client.
//
// # Infrastructure
//
// [cache] - File, Redis and null caches with typed keys.
//
// [store] - Snapshot history in memory or MongoDB.
//
// [config] - TOML configuration with environment overrides.
//
// [errors] - Coded errors and their HTTP status mapping.
//
// [httputil] - Retry with exponential backoff.
//
// [observability] - Hooks for fetch, cache, HTTP and animation events.
//
// # Testing
//
//	go test ./...                        # All tests
//	go test -tags integration ./pkg/...  # Include MongoDB tests
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/graph
// [cost]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/cost
// [details]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/details
// [flow]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/flow
// [layout]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/layout
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/render/nodelink
// [integrations/pipelines]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/integrations/pipelines
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/observability
package pkg

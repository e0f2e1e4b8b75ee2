// Package pipelines fetches resource paths and regional costs for a pipeline
// from the cost optimizer API.
//
// Two read-only endpoints are consumed:
//
//	GET {base}/api/v1/pipelines/{name}/graph?cloudProvider={provider}
//	GET {base}/api/v1/pipelines/{name}/cost?cloudProvider={provider}
//
// [Client.Load] issues both requests concurrently and returns a [Snapshot]
// only when both succeed. Any failure is reported as a single
// FETCH_FAILED error; there is no partial result.
//
// Responses are cached through the shared [integrations.Client], so repeat
// loads within the cache TTL do not hit the network unless refresh is set.
package pipelines

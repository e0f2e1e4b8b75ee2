// Package integrations provides HTTP clients for the APIs costgraph reads.
//
// # Overview
//
// The [Client] type holds what every API client shares: JSON GET requests,
// status handling, response caching via [cache.Cache] and retries via
// [httputil.Policy]. API-specific clients live in subpackages:
//
//   - [pipelines]: the pipeline graph and cost endpoints
//
// # Status Handling
//
// Any 2xx status is success. 404 maps to [ErrNotFound]; every other status
// and every transport failure maps to [ErrNetwork]. Transport failures and
// 5xx responses are marked retryable.
//
// [pipelines]: github.com/matzehuels/costgraph/pkg/integrations/pipelines
// [cache.Cache]: github.com/matzehuels/costgraph/pkg/cache.Cache
// [httputil.Policy]: github.com/matzehuels/costgraph/pkg/httputil.Policy
package integrations

// Package httputil provides retry helpers for the pipeline API client.
//
// # Retry
//
// [Policy.Do] re-runs an operation while it fails with a [RetryableError],
// doubling the delay between attempts:
//
//	err := httputil.DefaultPolicy.Do(ctx, func() error {
//	    return fetch(ctx)
//	})
//
// Clients mark network errors and 5xx responses as retryable with
// [Retryable]. Everything else (404, 4xx, decode errors) fails at once.
//
// The pipeline API client defaults to [NoRetry]; the number of attempts is
// raised with the retry_attempts config key or the --retries flag.
package httputil

package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/matzehuels/costgraph/pkg/httputil"
)

// Pipeline responses can be slow to aggregate upstream.
const requestTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when the API answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and any other non-2xx status.
	ErrNetwork = errors.New("network error")
)

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// checkStatus classifies a response status. Server errors are retryable,
// client errors are not.
func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

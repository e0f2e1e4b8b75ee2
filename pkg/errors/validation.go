package errors

import (
	"slices"
	"strings"
	"unicode"
)

// Cloud providers accepted by the pipeline API.
const (
	ProviderAWS        = "AWS"
	ProviderAzure      = "Azure"
	ProviderGCP        = "GCP"
	ProviderMultiCloud = "Multi-Cloud"
)

// Providers lists the supported cloud providers in display order.
var Providers = []string{ProviderAWS, ProviderAzure, ProviderGCP, ProviderMultiCloud}

// ValidatePipelineName validates a pipeline name before it is placed in a URL path.
// Pipeline names are free text ("Smart City Operations Platform") so spaces and
// punctuation are fine; the rules only reject values that cannot be a name:
//   - No empty or whitespace-only names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 200 characters
func ValidatePipelineName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidPipeline, "pipeline name cannot be empty")
	}

	if len(name) > 200 {
		return New(ErrCodeInvalidPipeline, "pipeline name too long (max 200 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPipeline, "pipeline name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPipeline, "pipeline name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateProvider checks that provider is one of [Providers].
// The comparison is case-sensitive because the upstream API matches it verbatim.
func ValidateProvider(provider string) error {
	if provider == "" {
		return New(ErrCodeInvalidProvider, "cloud provider cannot be empty")
	}
	if !slices.Contains(Providers, provider) {
		return New(ErrCodeInvalidProvider, "unknown cloud provider %q (must be one of: %s)",
			provider, strings.Join(Providers, ", "))
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// Package fetcher defines the port interface for retrieving upstream documents.
package fetcher

import "context"

// Fetcher retrieves the raw body behind a URL.
// Failures match domain.ErrFetch.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Package tagsource downloads the source pages of matches and scrapes their tags.
package tagsource

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"iqdbtag/internal/tagger"
)

// maxPageSize bounds how much of a tag page is read.
const maxPageSize = 8 << 20

// HTTPPageFetcher downloads pages with a plain GET.
type HTTPPageFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPPageFetcher creates a page fetcher. Deadlines come from the context
// passed to Fetch.
func NewHTTPPageFetcher(userAgent string) *HTTPPageFetcher {
	return &HTTPPageFetcher{client: &http.Client{}, userAgent: userAgent}
}

// Fetch returns the body of pageURL. Any non-2xx response is an error.
func (f *HTTPPageFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: %s", pageURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", pageURL, err)
	}
	return body, nil
}

var _ tagger.PageFetcher = (*HTTPPageFetcher)(nil)

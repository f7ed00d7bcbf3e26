// Package iqdb uploads images to iqdb.org (or a mirror) and parses the
// result page into match items.
package iqdb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"iqdbtag/internal/tagger"
)

// maxPageSize bounds how much of a result page is read.
const maxPageSize = 8 << 20

// Client submits images to the search places.
type Client struct {
	http      *http.Client
	userAgent string
	endpoints map[tagger.Place]string
}

// NewClient creates a Client using each place's default endpoint.
func NewClient(userAgent string, timeout time.Duration) *Client {
	endpoints := make(map[tagger.Place]string, len(tagger.Places))
	for _, p := range tagger.Places {
		endpoints[p] = p.Endpoint()
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		endpoints: endpoints,
	}
}

// SetEndpoint overrides the upload URL of place, e.g. to use a mirror.
// An empty url keeps the default.
func (c *Client) SetEndpoint(place tagger.Place, url string) {
	if url != "" {
		c.endpoints[place] = url
	}
}

// Search uploads the image at imagePath to place and parses the result page.
func (c *Client) Search(ctx context.Context, place tagger.Place, imagePath string) ([]tagger.MatchItem, error) {
	endpoint, ok := c.endpoints[place]
	if !ok || endpoint == "" {
		return nil, &tagger.SearchEndpointError{Place: place, Err: fmt.Errorf("no endpoint for place")}
	}

	body, contentType, err := multipartBody(imagePath)
	if err != nil {
		return nil, &tagger.SearchEndpointError{Place: place, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, &tagger.SearchEndpointError{Place: place, Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &tagger.SearchEndpointError{Place: place, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &tagger.SearchEndpointError{Place: place, Err: fmt.Errorf("POST %s: %s", endpoint, resp.Status)}
	}

	items, err := ParsePage(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, &tagger.SearchEndpointError{Place: place, Err: err}
	}
	return items, nil
}

func multipartBody(imagePath string) (io.Reader, string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("reading upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &body, writer.FormDataContentType(), nil
}

var _ tagger.Searcher = (*Client)(nil)

package tagger

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"iqdbtag/internal/database/sqlc"
)

const (
	// DefaultTagFetchTimeout bounds a single tag page fetch.
	DefaultTagFetchTimeout = 10 * time.Second

	// DefaultMaxConcurrentFetches bounds the number of tag pages in flight.
	DefaultMaxConcurrentFetches = 8
)

// DefaultDenyHosts are hosts known to block or not support tag scraping.
var DefaultDenyHosts = []string{"anime-pictures.net", "www.theanimegallery.com"}

// TagRequest asks for the tags of one match result.
type TagRequest struct {
	MatchResult sqlc.MatchResult
	URL         string
}

// TagResult is the outcome for one TagRequest. Err is informational: a failed
// item still yields a result, with no tags.
type TagResult struct {
	MatchResult sqlc.MatchResult
	URL         string
	Tags        []*sqlc.Tag
	Cached      bool
	Err         error
}

// FetcherConfig tunes the BatchTagFetcher.
type FetcherConfig struct {
	DenyHosts     []string
	Timeout       time.Duration
	MaxConcurrent int
}

// BatchTagFetcher resolves tags for many match results at once. Cached tags
// and denylisted hosts are answered without network access; the remaining
// pages are fetched concurrently and written back to the store from the
// calling goroutine.
type BatchTagFetcher struct {
	database  Database
	pages     PageFetcher
	parser    TagParser
	logger    Logger
	denyHosts map[string]bool
	timeout   time.Duration
	maxFlight int64
}

// NewBatchTagFetcher creates a BatchTagFetcher. Zero config values fall back
// to the package defaults.
func NewBatchTagFetcher(database Database, pages PageFetcher, parser TagParser, logger Logger, cfg FetcherConfig) *BatchTagFetcher {
	if cfg.DenyHosts == nil {
		cfg.DenyHosts = DefaultDenyHosts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTagFetchTimeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrentFetches
	}

	deny := make(map[string]bool, len(cfg.DenyHosts))
	for _, h := range cfg.DenyHosts {
		deny[strings.ToLower(h)] = true
	}

	return &BatchTagFetcher{
		database:  database,
		pages:     pages,
		parser:    parser,
		logger:    logger,
		denyHosts: deny,
		timeout:   cfg.Timeout,
		maxFlight: int64(cfg.MaxConcurrent),
	}
}

type fetchOutcome struct {
	req   TagRequest
	names []TagName
	err   error
}

// FetchTags returns one TagResult per request, in no particular order.
// It never fails as a whole: per-item failures are logged and yield empty tags.
func (f *BatchTagFetcher) FetchTags(ctx context.Context, reqs []TagRequest) []*TagResult {
	results := make([]*TagResult, 0, len(reqs))
	var pending []TagRequest

	for _, req := range reqs {
		cached, err := f.database.FindTagsForMatch(req.MatchResult.ID)
		if err != nil {
			f.logger.Warn("reading cached tags failed", "url", req.URL, "error", err)
		} else if len(cached) > 0 {
			results = append(results, &TagResult{MatchResult: req.MatchResult, URL: req.URL, Tags: cached, Cached: true})
			continue
		}

		if f.isDenied(req.URL) {
			f.logger.Debug("url in filtered hosts, no tag fetched", "url", req.URL)
			results = append(results, &TagResult{MatchResult: req.MatchResult, URL: req.URL})
			continue
		}

		pending = append(pending, req)
	}

	if len(pending) == 0 {
		return results
	}

	// Buffered so every goroutine can finish even if nobody is reading.
	outcomes := make(chan fetchOutcome, len(pending))
	sem := semaphore.NewWeighted(f.maxFlight)

	for _, req := range pending {
		go func() {
			if err := sem.Acquire(ctx, 1); err != nil {
				outcomes <- fetchOutcome{req: req, err: err}
				return
			}
			defer sem.Release(1)

			names, err := f.fetchOne(ctx, req.URL)
			outcomes <- fetchOutcome{req: req, names: names, err: err}
		}()
	}

	for range pending {
		results = append(results, f.record(<-outcomes))
	}
	return results
}

// fetchOne downloads and parses a single page under its own timeout.
func (f *BatchTagFetcher) fetchOne(ctx context.Context, pageURL string) ([]TagName, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.pages.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	names, err := f.parser.ParseTags(page, pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing tags: %w", err)
	}
	return names, nil
}

// record turns a fetch outcome into a TagResult, storing successful tags.
func (f *BatchTagFetcher) record(out fetchOutcome) *TagResult {
	result := &TagResult{MatchResult: out.req.MatchResult, URL: out.req.URL}

	if out.err != nil {
		result.Err = &TagFetchError{URL: out.req.URL, Err: out.err}
		f.logger.Warn("tag fetch failed", "url", out.req.URL, "error", out.err)
		return result
	}
	if len(out.names) == 0 {
		f.logger.Debug("no tags found", "url", out.req.URL)
		return result
	}

	tags, err := f.database.AssociateTags(out.req.MatchResult.ID, out.names)
	if err != nil {
		result.Err = &TagFetchError{URL: out.req.URL, Err: fmt.Errorf("storing tags: %w", err)}
		f.logger.Warn("storing tags failed", "url", out.req.URL, "error", err)
		return result
	}

	f.logger.Debug("tags fetched", "url", out.req.URL, "count", len(tags))
	result.Tags = tags
	return result
}

func (f *BatchTagFetcher) isDenied(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	return f.denyHosts[strings.ToLower(u.Host)]
}

package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"iqdbtag/internal/tagger"
)

// StubPageFetcher serves pages from memory. URLs without a page or error
// fail as not found. Safe for concurrent use.
type StubPageFetcher struct {
	mu    sync.Mutex
	pages map[string][]byte
	errs  map[string]error
	slow  map[string]bool
	calls map[string]int
}

// NewStubPageFetcher creates an empty StubPageFetcher.
func NewStubPageFetcher() *StubPageFetcher {
	return &StubPageFetcher{
		pages: make(map[string][]byte),
		errs:  make(map[string]error),
		slow:  make(map[string]bool),
		calls: make(map[string]int),
	}
}

// SetPage serves page for pageURL.
func (f *StubPageFetcher) SetPage(pageURL string, page []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[pageURL] = page
}

// SetError makes fetches of pageURL fail with err.
func (f *StubPageFetcher) SetError(pageURL string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[pageURL] = err
}

// SetBlocking makes fetches of pageURL hang until their context is done.
func (f *StubPageFetcher) SetBlocking(pageURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slow[pageURL] = true
}

func (f *StubPageFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	f.mu.Lock()
	f.calls[pageURL]++
	page, ok := f.pages[pageURL]
	err := f.errs[pageURL]
	slow := f.slow[pageURL]
	f.mu.Unlock()

	if slow {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("GET %s: 404 Not Found", pageURL)
	}
	return page, nil
}

// Calls returns how often pageURL was fetched.
func (f *StubPageFetcher) Calls(pageURL string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[pageURL]
}

// TotalCalls returns the number of fetches across all URLs.
func (f *StubPageFetcher) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// LineTagParser treats every non-empty line of a page as a tag, with an
// optional "namespace:" prefix.
type LineTagParser struct{}

func (LineTagParser) ParseTags(page []byte, _ string) ([]tagger.TagName, error) {
	var names []tagger.TagName
	for _, line := range strings.Split(string(page), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if ns, name, ok := strings.Cut(line, ":"); ok {
			names = append(names, tagger.TagName{Namespace: ns, Name: name})
		} else {
			names = append(names, tagger.TagName{Name: line})
		}
	}
	return names, nil
}

var (
	_ tagger.PageFetcher = (*StubPageFetcher)(nil)
	_ tagger.TagParser   = LineTagParser{}
)

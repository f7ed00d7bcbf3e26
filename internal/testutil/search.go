package testutil

import (
	"context"
	"sync"

	"iqdbtag/internal/tagger"
)

// StubSearcher returns canned matches per place and counts calls.
// Safe for concurrent use.
type StubSearcher struct {
	mu      sync.Mutex
	results map[tagger.Place][]tagger.MatchItem
	errs    map[tagger.Place]error
	calls   []string
}

// NewStubSearcher creates a StubSearcher with no results.
func NewStubSearcher() *StubSearcher {
	return &StubSearcher{
		results: make(map[tagger.Place][]tagger.MatchItem),
		errs:    make(map[tagger.Place]error),
	}
}

// SetResults sets the items returned for place.
func (s *StubSearcher) SetResults(place tagger.Place, items ...tagger.MatchItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[place] = items
}

// SetError makes searches on place fail with a SearchEndpointError wrapping err.
func (s *StubSearcher) SetError(place tagger.Place, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[place] = err
}

func (s *StubSearcher) Search(_ context.Context, place tagger.Place, imagePath string) ([]tagger.MatchItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, imagePath)
	if err := s.errs[place]; err != nil {
		return nil, &tagger.SearchEndpointError{Place: place, Err: err}
	}
	return append([]tagger.MatchItem(nil), s.results[place]...), nil
}

// Calls returns the number of searches performed.
func (s *StubSearcher) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// Uploaded returns the file paths that were submitted, in order.
func (s *StubSearcher) Uploaded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

var _ tagger.Searcher = (*StubSearcher)(nil)

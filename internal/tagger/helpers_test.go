package tagger_test

import (
	"path/filepath"
	"sort"
	"testing"
	"time"

	"iqdbtag/internal/database"
	"iqdbtag/internal/database/sqlc"
	"iqdbtag/internal/fs"
	"iqdbtag/internal/tagger"
	"iqdbtag/internal/testutil"
	"iqdbtag/internal/thumbnail"
)

type testEnv struct {
	db       *database.SQLiteDatabase
	searcher *testutil.StubSearcher
	pages    *testutil.StubPageFetcher
	svc      *tagger.TaggerService
	thumbDir string
	dir      string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		db:       testutil.NewTestDatabase(t),
		searcher: testutil.NewStubSearcher(),
		pages:    testutil.NewStubPageFetcher(),
		dir:      t.TempDir(),
	}
	env.thumbDir = filepath.Join(env.dir, "thumbs")

	logger := tagger.NewNopLogger()
	fetcher := tagger.NewBatchTagFetcher(env.db, env.pages, testutil.LineTagParser{}, logger, tagger.FetcherConfig{
		Timeout:       time.Second,
		MaxConcurrent: 4,
	})
	env.svc = tagger.NewTaggerService(
		env.db,
		fs.NewOSFilesystemManager(nil),
		thumbnail.NewGenerator(90),
		env.searcher,
		fetcher,
		logger,
		tagger.ServiceConfig{ThumbnailDir: env.thumbDir},
	)
	return env
}

// redImage writes the 128×128 red fixture and returns its path.
func (e *testEnv) redImage(t *testing.T, name string) string {
	t.Helper()
	return testutil.WriteRedJPEG(t, e.dir, name)
}

func (e *testEnv) resolve(t *testing.T, path string) *tagger.Path {
	t.Helper()
	p, err := fs.NewOSFilesystemManager(nil).Resolve(path)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return p
}

func (e *testEnv) count(t *testing.T, table string) int64 {
	t.Helper()
	counts, err := e.db.Counts()
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	return counts[table]
}

var (
	bestItem = tagger.MatchItem{
		Href:       "//danbooru.donmai.us/posts/1",
		Thumb:      "/danbooru/1.jpg",
		Rating:     tagger.RatingSafe,
		Width:      800,
		Height:     600,
		Similarity: 95,
		Status:     tagger.StatusBestMatch,
	}
	possibleItem = tagger.MatchItem{
		Href:       "http://www.zerochan.net/2",
		Thumb:      "/zerochan/2.jpg",
		Similarity: 80,
		Status:     tagger.StatusPossibleMatch,
	}
	deniedItem = tagger.MatchItem{
		Href:       "//anime-pictures.net/pictures/view_post/3",
		Similarity: 70,
		Status:     tagger.StatusOther,
	}
)

func sqlcMatch(id int64, status tagger.Status) sqlc.ImageMatch {
	return sqlc.ImageMatch{ID: id, Status: int64(status)}
}

// storeMatches records a red image and saves items as its iqdb matches.
func (e *testEnv) storeMatches(t *testing.T, items ...tagger.MatchItem) []*tagger.Match {
	t.Helper()
	path := e.redImage(t, "stored.jpg")
	img, _, err := e.svc.StoreImage(e.resolve(t, path))
	if err != nil {
		t.Fatalf("StoreImage() error = %v", err)
	}
	var matches []*tagger.Match
	for _, item := range items {
		m, _, err := e.db.SaveImageMatch(img.ID, tagger.PlaceIQDB, item)
		if err != nil {
			t.Fatalf("SaveImageMatch() error = %v", err)
		}
		matches = append(matches, m)
	}
	return matches
}

func tagNames(tags []*sqlc.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, tagger.FullName(t))
	}
	sort.Strings(names)
	return names
}

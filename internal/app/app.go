package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"iqdbtag/internal/config"
	"iqdbtag/internal/database"
	"iqdbtag/internal/database/sqlc"
	"iqdbtag/internal/fs"
	"iqdbtag/internal/iqdb"
	"iqdbtag/internal/tagger"
	"iqdbtag/internal/tagsource"
	"iqdbtag/internal/thumbnail"
)

// TaggerApp is the application layer between the CLI and TaggerService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages the DB lifecycle on Close.
type TaggerApp struct {
	cfg     *config.Config
	db      *database.SQLiteDatabase
	service *tagger.TaggerService
	op      *Operation
	runID   string
	lock    *flock.Flock
	logFile *os.File
}

// NewTaggerApp creates a fully wired TaggerApp from the given config.
// operation identifies the CLI command being run (e.g. "Search", "ShowImage").
// verbose forces debug logging. The caller must call Close when done.
func NewTaggerApp(cfg *config.Config, operation string, verbose bool) (*TaggerApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &tagger.ConfigurationError{Err: err}
	}
	for _, dir := range []string{cfg.BaseDir, cfg.Thumbnail.Dir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &tagger.ConfigurationError{Err: fmt.Errorf("creating data directory: %w", err)}
		}
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, &tagger.ConfigurationError{Err: err}
	}
	if verbose {
		level = slog.LevelDebug
	}

	runID := uuid.NewString()
	logger, logFile, err := newLogger(cfg.LogDir, runID, level)
	if err != nil {
		return nil, &tagger.ConfigurationError{Err: fmt.Errorf("creating logger: %w", err)}
	}

	a := &TaggerApp{
		cfg:     cfg,
		op:      NewOperation(operation, ""),
		runID:   runID,
		logFile: logFile,
	}

	if cfg.Database.Type == "sqlite" {
		if err := a.acquireLock(cfg.Database.Path + ".lock"); err != nil {
			logFile.Close()
			return nil, err
		}
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database, tagger.RealClock{})
	if err != nil {
		a.releaseLock()
		logFile.Close()
		return nil, err
	}
	a.db = db

	client := iqdb.NewClient(cfg.Search.UserAgent, time.Duration(cfg.Search.TimeoutSeconds)*time.Second)
	client.SetEndpoint(tagger.PlaceIQDB, cfg.Search.IQDBURL)
	client.SetEndpoint(tagger.PlaceDanbooru, cfg.Search.DanbooruURL)

	log := &slogAdapter{l: logger}
	fetcher := tagger.NewBatchTagFetcher(
		db,
		tagsource.NewHTTPPageFetcher(cfg.Search.UserAgent),
		tagsource.NewParser(),
		log,
		tagger.FetcherConfig{
			DenyHosts:     cfg.Tags.DenyHosts,
			Timeout:       time.Duration(cfg.Tags.TimeoutSeconds) * time.Second,
			MaxConcurrent: cfg.Tags.MaxConcurrent,
		},
	)

	a.service = tagger.NewTaggerService(
		db,
		fs.NewOSFilesystemManager(cfg.Folder.Ignore),
		thumbnail.NewGenerator(cfg.Thumbnail.JPEGQuality),
		client,
		fetcher,
		log,
		tagger.ServiceConfig{
			ThumbnailDir: cfg.Thumbnail.Dir,
			DefaultThumbnailSize: tagger.Size{
				Width:  cfg.Thumbnail.DefaultWidth,
				Height: cfg.Thumbnail.DefaultHeight,
			},
		},
	)

	logger.Debug("app started", "operation", operation, "database", db.Path())
	return a, nil
}

// acquireLock takes the store lock without blocking. A lock held by another
// process is a ConfigurationError.
func (a *TaggerApp) acquireLock(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &tagger.ConfigurationError{Err: fmt.Errorf("creating database directory: %w", err)}
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return &tagger.ConfigurationError{Err: fmt.Errorf("acquiring lock %s: %w", path, err)}
	}
	if !ok {
		return &tagger.ConfigurationError{Err: fmt.Errorf("database is in use by another iqdbtag process (lock %s)", path)}
	}
	a.lock = lock
	return nil
}

func (a *TaggerApp) releaseLock() error {
	if a.lock == nil {
		return nil
	}
	return a.lock.Unlock()
}

// RunID identifies this process in log lines and operation records.
func (a *TaggerApp) RunID() string {
	return a.runID
}

// SearchOptions returns the pipeline defaults from the config.
func (a *TaggerApp) SearchOptions() (tagger.SearchOptions, error) {
	return SearchOptionsFromConfig(a.cfg)
}

// SearchOptionsFromConfig builds SearchOptions from the [search] section.
func SearchOptionsFromConfig(cfg *config.Config) (tagger.SearchOptions, error) {
	place, err := tagger.ParsePlace(cfg.Search.Place)
	if err != nil {
		return tagger.SearchOptions{}, err
	}
	filter, err := tagger.ParseMatchFilter(cfg.Search.MatchFilter)
	if err != nil {
		return tagger.SearchOptions{}, err
	}
	return tagger.SearchOptions{Place: place, MatchFilter: filter}, nil
}

// persistOperation saves the operation to the database, giving it an auto-increment ID.
// This should only be called for commands that search.
func (a *TaggerApp) persistOperation(parameters string) error {
	if a.op.Persisted() {
		return nil
	}
	a.op.Parameters = fmt.Sprintf("%s run=%s", parameters, a.runID)
	dbOp, err := a.db.CreateOperation(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// Search runs the pipeline on a single image.
func (a *TaggerApp) Search(ctx context.Context, rawPath string, opts tagger.SearchOptions) (*tagger.ImageReport, error) {
	if err := a.persistOperation(fmt.Sprintf("path=%s place=%s", rawPath, opts.Place)); err != nil {
		return nil, err
	}
	report, err := a.service.ProcessImage(ctx, rawPath, opts)
	if err != nil {
		a.op.Fail()
		return nil, err
	}
	return report, nil
}

// SearchFolder runs the pipeline on every image directly inside rawDir.
// The operation is recorded as failed when any image failed.
func (a *TaggerApp) SearchFolder(ctx context.Context, rawDir string, opts tagger.SearchOptions, onReport func(*tagger.ImageReport)) (*tagger.BatchResult, error) {
	if err := a.persistOperation(fmt.Sprintf("folder=%s place=%s", rawDir, opts.Place)); err != nil {
		return nil, err
	}
	result, err := a.service.ProcessFolder(ctx, rawDir, opts, onReport)
	if err != nil || len(result.Failures) > 0 {
		a.op.Fail()
	}
	return result, err
}

// ShowImage returns what the cache knows about the image at rawPath.
func (a *TaggerApp) ShowImage(rawPath string) (*tagger.ImageDetails, error) {
	return a.service.ShowImage(rawPath)
}

// GetHistory returns the most recent operations.
func (a *TaggerApp) GetHistory(limit int) ([]*sqlc.Operation, error) {
	return a.service.GetHistory(limit)
}

// GetStats returns the number of cached rows per table.
func (a *TaggerApp) GetStats() (map[string]int64, error) {
	return a.service.GetStats()
}

// Close finalizes the operation and releases all resources.
func (a *TaggerApp) Close() error {
	var errs []error

	if a.op.Persisted() {
		if err := a.db.FinishOperation(a.op.ID, a.op.Status); err != nil {
			errs = append(errs, fmt.Errorf("finishing operation: %w", err))
		}
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing database: %w", err))
	}
	if err := a.releaseLock(); err != nil {
		errs = append(errs, fmt.Errorf("releasing lock: %w", err))
	}
	if a.logFile != nil {
		a.logFile.Close()
	}

	return errors.Join(errs...)
}

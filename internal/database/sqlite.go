package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"iqdbtag/internal/database/migrations"
	"iqdbtag/internal/database/sqlc"
	"iqdbtag/internal/tagger"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the tagger.Database interface using SQLite.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *sqlc.Queries
	path    string
	clock   tagger.Clock
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for an in-memory database.
// A nil clock uses the real time.
func NewSQLiteDatabase(path string, clock tagger.Clock) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteDatabaseFromDB(db, path, clock), nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB, path string, clock tagger.Clock) *SQLiteDatabase {
	if clock == nil {
		clock = tagger.RealClock{}
	}
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		path:    path,
		clock:   clock,
	}
}

// OpenConnection opens and configures a SQLite database connection.
// The pool is limited to one connection: the store is written from a single
// goroutine, and an in-memory database only exists on the connection that
// created it.
func OpenConnection(path string) (*sql.DB, error) {
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000"
	if path != ":memory:" {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// withTx runs fn inside a transaction, committing on success.
func (s *SQLiteDatabase) withTx(ctx context.Context, fn func(q *sqlc.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(s.queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Image operations

func (s *SQLiteDatabase) GetOrCreateImage(img tagger.NewImage) (*sqlc.Image, bool, error) {
	ctx := context.Background()
	var (
		result  sqlc.Image
		created bool
	)

	err := s.withTx(ctx, func(q *sqlc.Queries) error {
		existing, err := q.GetImageByChecksum(ctx, img.Info.Checksum)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("finding image by checksum: %w", err)
		}

		result, err = q.InsertImage(ctx, sqlc.InsertImageParams{
			Checksum:  img.Info.Checksum,
			Width:     int64(img.Info.Width),
			Height:    int64(img.Info.Height),
			Path:      img.Path,
			Dhash:     sql.NullString{String: img.Info.DHash, Valid: img.Info.DHash != ""},
			CreatedAt: s.clock.Now(),
		})
		if err != nil {
			return fmt.Errorf("inserting image: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &result, created, nil
}

func (s *SQLiteDatabase) FindImageByChecksum(checksum string) (*sqlc.Image, error) {
	img, err := s.queries.GetImageByChecksum(context.Background(), checksum)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding image by checksum: %w", err)
	}
	return &img, nil
}

// Thumbnail operations

func (s *SQLiteDatabase) FindThumbnail(imageID int64, size tagger.Size) (*sqlc.Thumbnail, error) {
	thumb, err := s.queries.GetThumbnail(context.Background(), sqlc.GetThumbnailParams{
		ImageID: imageID,
		Width:   int64(size.Width),
		Height:  int64(size.Height),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding thumbnail: %w", err)
	}
	return &thumb, nil
}

func (s *SQLiteDatabase) GetOrCreateThumbnail(imageID int64, size tagger.Size, path string) (*sqlc.Thumbnail, bool, error) {
	ctx := context.Background()
	var (
		result  sqlc.Thumbnail
		created bool
	)

	err := s.withTx(ctx, func(q *sqlc.Queries) error {
		key := sqlc.GetThumbnailParams{ImageID: imageID, Width: int64(size.Width), Height: int64(size.Height)}
		existing, err := q.GetThumbnail(ctx, key)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("finding thumbnail: %w", err)
		}

		result, err = q.InsertThumbnail(ctx, sqlc.InsertThumbnailParams{
			ImageID:   imageID,
			Width:     key.Width,
			Height:    key.Height,
			Path:      path,
			CreatedAt: s.clock.Now(),
		})
		if err != nil {
			return fmt.Errorf("inserting thumbnail: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &result, created, nil
}

func (s *SQLiteDatabase) ListThumbnails(imageID int64) ([]*sqlc.Thumbnail, error) {
	thumbs, err := s.queries.ListThumbnailsByImage(context.Background(), imageID)
	if err != nil {
		return nil, fmt.Errorf("listing thumbnails: %w", err)
	}

	result := make([]*sqlc.Thumbnail, len(thumbs))
	for i := range thumbs {
		result[i] = &thumbs[i]
	}
	return result, nil
}

// Match operations

func (s *SQLiteDatabase) FindImageMatches(imageID int64, place tagger.Place) ([]*tagger.Match, error) {
	rows, err := s.queries.ListImageMatchesByImageAndPlace(context.Background(), sqlc.ListImageMatchesByImageAndPlaceParams{
		ImageID:     imageID,
		SearchPlace: int64(place),
	})
	if err != nil {
		return nil, fmt.Errorf("finding image matches: %w", err)
	}

	result := make([]*tagger.Match, len(rows))
	for i, row := range rows {
		result[i] = &tagger.Match{ImageMatch: row.ImageMatch, MatchResult: row.MatchResult}
	}
	return result, nil
}

func (s *SQLiteDatabase) ListImageMatches(imageID int64) ([]*tagger.Match, error) {
	rows, err := s.queries.ListImageMatchesByImage(context.Background(), imageID)
	if err != nil {
		return nil, fmt.Errorf("listing image matches: %w", err)
	}

	result := make([]*tagger.Match, len(rows))
	for i, row := range rows {
		result[i] = &tagger.Match{ImageMatch: row.ImageMatch, MatchResult: row.MatchResult}
	}
	return result, nil
}

// saveImageMatch get-or-creates the match result by href and then the image
// match by (image, match result, place).
func (s *SQLiteDatabase) saveImageMatch(ctx context.Context, q *sqlc.Queries, imageID int64, place tagger.Place, item tagger.MatchItem) (*tagger.Match, bool, error) {
	var result tagger.Match

	mr, err := q.GetMatchResultByHref(ctx, item.Href)
	if errors.Is(err, sql.ErrNoRows) {
		mr, err = q.InsertMatchResult(ctx, sqlc.InsertMatchResultParams{
			Href:      item.Href,
			Thumb:     item.Thumb,
			Rating:    int64(item.Rating),
			ImgAlt:    sql.NullString{String: item.ImgAlt, Valid: item.ImgAlt != ""},
			Width:     sql.NullInt64{Int64: int64(item.Width), Valid: item.Width > 0},
			Height:    sql.NullInt64{Int64: int64(item.Height), Valid: item.Height > 0},
			CreatedAt: s.clock.Now(),
		})
		if err != nil {
			return nil, false, fmt.Errorf("inserting match result: %w", err)
		}
	} else if err != nil {
		return nil, false, fmt.Errorf("finding match result: %w", err)
	}
	result.MatchResult = mr

	im, err := q.GetImageMatch(ctx, sqlc.GetImageMatchParams{
		ImageID:       imageID,
		MatchResultID: mr.ID,
		SearchPlace:   int64(place),
	})
	if err == nil {
		result.ImageMatch = im
		return &result, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("finding image match: %w", err)
	}

	im, err = q.InsertImageMatch(ctx, sqlc.InsertImageMatchParams{
		ImageID:       imageID,
		MatchResultID: mr.ID,
		SearchPlace:   int64(place),
		Similarity:    int64(item.Similarity),
		Status:        int64(item.Status),
		CreatedAt:     s.clock.Now(),
	})
	if err != nil {
		return nil, false, fmt.Errorf("inserting image match: %w", err)
	}
	result.ImageMatch = im
	return &result, true, nil
}

func (s *SQLiteDatabase) SaveImageMatch(imageID int64, place tagger.Place, item tagger.MatchItem) (*tagger.Match, bool, error) {
	ctx := context.Background()
	var (
		result  *tagger.Match
		created bool
	)

	err := s.withTx(ctx, func(q *sqlc.Queries) error {
		var err error
		result, created, err = s.saveImageMatch(ctx, q, imageID, place, item)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

func (s *SQLiteDatabase) ReplaceImageMatches(imageID int64, place tagger.Place, items []tagger.MatchItem) error {
	ctx := context.Background()

	return s.withTx(ctx, func(q *sqlc.Queries) error {
		if _, err := q.DeleteImageMatchesByImageAndPlace(ctx, sqlc.DeleteImageMatchesByImageAndPlaceParams{
			ImageID:     imageID,
			SearchPlace: int64(place),
		}); err != nil {
			return fmt.Errorf("deleting image matches: %w", err)
		}
		for _, item := range items {
			if _, _, err := s.saveImageMatch(ctx, q, imageID, place, item); err != nil {
				return fmt.Errorf("saving match %s: %w", item.Href, err)
			}
		}
		return nil
	})
}

// Tag operations

func getOrCreateTag(ctx context.Context, q *sqlc.Queries, name tagger.TagName) (sqlc.Tag, bool, error) {
	tag, err := q.GetTagByNamespaceAndName(ctx, sqlc.GetTagByNamespaceAndNameParams{
		Namespace: name.Namespace,
		Name:      name.Name,
	})
	if err == nil {
		return tag, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return sqlc.Tag{}, false, fmt.Errorf("finding tag %s: %w", name, err)
	}

	tag, err = q.InsertTag(ctx, sqlc.InsertTagParams{Namespace: name.Namespace, Name: name.Name})
	if err != nil {
		return sqlc.Tag{}, false, fmt.Errorf("inserting tag %s: %w", name, err)
	}
	return tag, true, nil
}

func (s *SQLiteDatabase) AssociateTags(matchResultID int64, names []tagger.TagName) ([]*sqlc.Tag, error) {
	ctx := context.Background()
	var result []*sqlc.Tag

	err := s.withTx(ctx, func(q *sqlc.Queries) error {
		seen := make(map[int64]bool, len(names))
		for _, name := range names {
			tag, _, err := getOrCreateTag(ctx, q, name)
			if err != nil {
				return err
			}
			if seen[tag.ID] {
				continue
			}
			seen[tag.ID] = true

			if _, err := q.InsertMatchTag(ctx, sqlc.InsertMatchTagParams{
				MatchResultID: matchResultID,
				TagID:         tag.ID,
			}); err != nil {
				return fmt.Errorf("associating tag %s: %w", name, err)
			}
			result = append(result, &tag)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SQLiteDatabase) FindTagsForMatch(matchResultID int64) ([]*sqlc.Tag, error) {
	tags, err := s.queries.ListTagsByMatchResult(context.Background(), matchResultID)
	if err != nil {
		return nil, fmt.Errorf("finding tags for match: %w", err)
	}

	result := make([]*sqlc.Tag, len(tags))
	for i := range tags {
		result[i] = &tags[i]
	}
	return result, nil
}

// Operation tracking

func (s *SQLiteDatabase) CreateOperation(operation string, parameters string) (*sqlc.Operation, error) {
	op, err := s.queries.InsertOperation(context.Background(), sqlc.InsertOperationParams{
		StartedAt:  s.clock.Now(),
		Operation:  operation,
		Parameters: parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	return &op, nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status string) error {
	err := s.queries.UpdateOperationFinished(context.Background(), sqlc.UpdateOperationFinishedParams{
		FinishedAt: sql.NullTime{Time: s.clock.Now(), Valid: true},
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*sqlc.Operation, error) {
	ops, err := s.queries.ListOperations(context.Background(), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}

	result := make([]*sqlc.Operation, len(ops))
	for i := range ops {
		result[i] = &ops[i]
	}
	return result, nil
}

// Counts returns the number of rows in each cache table, keyed by table name.
func (s *SQLiteDatabase) Counts() (map[string]int64, error) {
	ctx := context.Background()
	counters := []struct {
		table string
		count func(context.Context) (int64, error)
	}{
		{"images", s.queries.CountImages},
		{"thumbnails", s.queries.CountThumbnails},
		{"match_results", s.queries.CountMatchResults},
		{"image_matches", s.queries.CountImageMatches},
		{"match_tags", s.queries.CountMatchTags},
	}

	result := make(map[string]int64, len(counters))
	for _, c := range counters {
		n, err := c.count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", c.table, err)
		}
		result[c.table] = n
	}
	return result, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is at the latest version.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Migrate brings the schema up to the latest version.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements tagger.Database interface
var _ tagger.Database = (*SQLiteDatabase)(nil)

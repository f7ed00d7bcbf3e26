package tagger

import "iqdbtag/internal/database/sqlc"

// NewImage carries the fields recorded when an image is first observed.
type NewImage struct {
	Path string
	Info ImageInfo
}

// Database provides an interface for the local cache store.
// Every get-or-create runs find-then-insert inside a single transaction and
// reports whether a row was inserted.
type Database interface {
	// Image operations

	// GetOrCreateImage returns the image with the same checksum, or records a new one.
	GetOrCreateImage(img NewImage) (*sqlc.Image, bool, error)

	// FindImageByChecksum returns nil when the checksum has never been stored.
	FindImageByChecksum(checksum string) (*sqlc.Image, error)

	// Thumbnail operations

	// FindThumbnail returns nil when no thumbnail of that size is recorded.
	FindThumbnail(imageID int64, size Size) (*sqlc.Thumbnail, error)

	// GetOrCreateThumbnail records a thumbnail for (image, size) unless one exists.
	GetOrCreateThumbnail(imageID int64, size Size, path string) (*sqlc.Thumbnail, bool, error)

	// ListThumbnails returns every thumbnail of an image.
	ListThumbnails(imageID int64) ([]*sqlc.Thumbnail, error)

	// Match operations

	// FindImageMatches returns the cached matches of an image for one place.
	FindImageMatches(imageID int64, place Place) ([]*Match, error)

	// ListImageMatches returns the cached matches of an image for all places.
	ListImageMatches(imageID int64) ([]*Match, error)

	// SaveImageMatch get-or-creates the match result by href and then the
	// image match by (image, match result, place).
	SaveImageMatch(imageID int64, place Place, item MatchItem) (*Match, bool, error)

	// ReplaceImageMatches drops the image matches of (image, place) and saves
	// items in their place, in one transaction. Match results are kept.
	ReplaceImageMatches(imageID int64, place Place, items []MatchItem) error

	// Tag operations

	// AssociateTags get-or-creates every tag and links it to the match result,
	// all in one transaction.
	AssociateTags(matchResultID int64, names []TagName) ([]*sqlc.Tag, error)

	// FindTagsForMatch returns the tags linked to a match result.
	FindTagsForMatch(matchResultID int64) ([]*sqlc.Tag, error)

	// Operation tracking

	CreateOperation(operation string, parameters string) (*sqlc.Operation, error)
	FinishOperation(id int64, status string) error
	ListOperations(limit int) ([]*sqlc.Operation, error)

	// Counts returns the number of rows per cache table.
	Counts() (map[string]int64, error)

	// Close closes the database connection.
	Close() error
}

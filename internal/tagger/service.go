package tagger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"iqdbtag/internal/database/sqlc"
)

// ServiceConfig holds the defaults the pipeline needs. It is filled in at the
// CLI/config boundary.
type ServiceConfig struct {
	// ThumbnailDir is where generated thumbnails are written.
	ThumbnailDir string

	// DefaultThumbnailSize is the thumbnail every stored image gets.
	DefaultThumbnailSize Size
}

// TaggerService is the orchestration layer that drives images through the
// store, search, filter, tag and report stages.
type TaggerService struct {
	database    Database
	fsmgr       FilesystemManager
	thumbnailer Thumbnailer
	searcher    Searcher
	fetcher     *BatchTagFetcher
	logger      Logger
	cfg         ServiceConfig
}

// NewTaggerService creates a new TaggerService with the provided dependencies.
func NewTaggerService(database Database, fsmgr FilesystemManager, thumbnailer Thumbnailer, searcher Searcher, fetcher *BatchTagFetcher, logger Logger, cfg ServiceConfig) *TaggerService {
	if cfg.DefaultThumbnailSize.IsZero() {
		cfg.DefaultThumbnailSize = DefaultThumbnailSize
	}
	return &TaggerService{
		database:    database,
		fsmgr:       fsmgr,
		thumbnailer: thumbnailer,
		searcher:    searcher,
		fetcher:     fetcher,
		logger:      logger,
		cfg:         cfg,
	}
}

// StoreImage records the image at path, keyed by its content checksum.
// An image whose bytes were already stored (under any path) is returned with
// created=false.
func (s *TaggerService) StoreImage(path *Path) (*sqlc.Image, bool, error) {
	info, err := s.fsmgr.Inspect(path)
	if err != nil {
		return nil, false, err
	}

	img, created, err := s.database.GetOrCreateImage(NewImage{Path: path.String(), Info: *info})
	if err != nil {
		return nil, false, fmt.Errorf("storing image: %w", err)
	}

	if created {
		s.logger.Debug("image stored", "path", path.String(), "checksum", img.Checksum)
	} else {
		s.logger.Debug("image already stored", "path", path.String(), "checksum", img.Checksum, "first_path", img.Path)
	}
	return img, created, nil
}

// ThumbnailPath returns the deterministic thumbnail location for an image and size.
func ThumbnailPath(folder, checksum string, size Size) string {
	return filepath.Join(folder, fmt.Sprintf("%s-%d-%d.jpg", checksum, size.Width, size.Height))
}

// GetOrCreateThumbnail returns the thumbnail of image for size, generating it
// from source when needed. created reports whether a thumbnail file was written
// or a record inserted. A recorded thumbnail whose file has disappeared is
// regenerated in place; its record is reused.
func (s *TaggerService) GetOrCreateThumbnail(image *sqlc.Image, source string, folder string, size Size) (*sqlc.Thumbnail, bool, error) {
	existing, err := s.database.FindThumbnail(image.ID, size)
	if err != nil {
		return nil, false, fmt.Errorf("finding thumbnail: %w", err)
	}
	if existing != nil {
		if fileUsable(existing.Path) {
			return existing, false, nil
		}
		s.logger.Warn("thumbnail file missing, regenerating", "path", existing.Path)
		if err := s.generateThumbnail(source, existing.Path, size); err != nil {
			return nil, false, err
		}
		return existing, true, nil
	}

	thumbPath := ThumbnailPath(folder, image.Checksum, size)
	if fileUsable(thumbPath) {
		s.logger.Debug("reusing thumbnail file", "path", thumbPath)
	} else if err := s.generateThumbnail(source, thumbPath, size); err != nil {
		return nil, false, err
	}

	thumb, created, err := s.database.GetOrCreateThumbnail(image.ID, size, thumbPath)
	if err != nil {
		return nil, false, fmt.Errorf("recording thumbnail: %w", err)
	}
	return thumb, created, nil
}

func (s *TaggerService) generateThumbnail(source, dst string, size Size) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating thumbnail directory: %w", err)
	}
	if err := s.thumbnailer.Generate(source, dst, size); err != nil {
		return fmt.Errorf("generating %s thumbnail: %w", size, err)
	}
	s.logger.Debug("thumbnail generated", "path", dst, "size", size.String())
	return nil
}

// fileUsable reports whether path is an existing, non-empty file.
func fileUsable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// SearchOrReuse returns the matches of image on place. Stored matches are
// returned without touching the network unless force is set; otherwise the
// file at uploadPath is submitted and every parsed result is stored. A forced
// search replaces the stored match set of (image, place).
func (s *TaggerService) SearchOrReuse(ctx context.Context, image *sqlc.Image, place Place, uploadPath string, force bool) ([]*Match, error) {
	if !force {
		cached, err := s.database.FindImageMatches(image.ID, place)
		if err != nil {
			return nil, fmt.Errorf("finding cached matches: %w", err)
		}
		if len(cached) > 0 {
			s.logger.Debug("using cached matches", "checksum", image.Checksum, "place", place.String(), "count", len(cached))
			return cached, nil
		}
	}

	items, err := s.searcher.Search(ctx, place, uploadPath)
	if err != nil {
		return nil, err
	}
	s.logger.Info("search complete", "place", place.String(), "path", uploadPath, "results", len(items))

	if force {
		if err := s.database.ReplaceImageMatches(image.ID, place, items); err != nil {
			return nil, fmt.Errorf("replacing matches: %w", err)
		}
	} else {
		for _, item := range items {
			if _, _, err := s.database.SaveImageMatch(image.ID, place, item); err != nil {
				return nil, fmt.Errorf("saving match %s: %w", item.Href, err)
			}
		}
	}

	matches, err := s.database.FindImageMatches(image.ID, place)
	if err != nil {
		return nil, fmt.Errorf("reading stored matches: %w", err)
	}
	return matches, nil
}

// FilterMatches applies a match filter. The store is never modified.
func FilterMatches(matches []*Match, filter MatchFilter) []*Match {
	switch filter {
	case MatchFilterBestMatch:
		var kept []*Match
		for _, m := range matches {
			if m.Status() == StatusBestMatch {
				kept = append(kept, m)
			}
		}
		return kept
	default:
		return matches
	}
}

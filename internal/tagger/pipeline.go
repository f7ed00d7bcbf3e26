package tagger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"iqdbtag/internal/database/sqlc"
)

// SearchOptions controls one run of the pipeline.
type SearchOptions struct {
	Place       Place
	Resize      bool
	Size        Size // upload thumbnail size when Resize is set; zero means the default thumbnail
	MatchFilter MatchFilter
	WriteTags   bool
	Force       bool
}

// ReportEntry is one filtered match with its tags.
type ReportEntry struct {
	Match *Match
	Tags  []*sqlc.Tag
}

// ImageReport is the outcome of running the pipeline on one image.
type ImageReport struct {
	Path         string
	Image        *sqlc.Image
	Thumbnail    *sqlc.Thumbnail
	ThumbnailErr error
	Entries      []ReportEntry
}

// Tags returns the tags of every entry, in entry order, without duplicates.
func (r *ImageReport) Tags() []*sqlc.Tag {
	seen := make(map[int64]bool)
	var tags []*sqlc.Tag
	for _, e := range r.Entries {
		for _, t := range e.Tags {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			tags = append(tags, t)
		}
	}
	return tags
}

// ItemFailure is an image that could not be processed in a folder run.
type ItemFailure struct {
	Path string
	Err  error
}

// BatchResult summarizes a folder run.
type BatchResult struct {
	Processed int
	Failures  []ItemFailure
}

// ProcessImage stores, searches, filters and tags a single image.
func (s *TaggerService) ProcessImage(ctx context.Context, rawPath string, opts SearchOptions) (*ImageReport, error) {
	path, err := s.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, &ImageReadError{Path: rawPath, Err: err}
	}
	if path.IsDir() {
		return nil, &ImageReadError{Path: rawPath, Err: errors.New("is a directory")}
	}

	// Stored
	image, _, err := s.StoreImage(path)
	if err != nil {
		return nil, err
	}
	report := &ImageReport{Path: path.String(), Image: image}

	uploadPath := path.String()
	thumb, _, err := s.GetOrCreateThumbnail(image, path.String(), s.cfg.ThumbnailDir, s.cfg.DefaultThumbnailSize)
	if err != nil {
		s.logger.Warn("thumbnail failed, uploading original", "path", path.String(), "error", err)
		report.ThumbnailErr = err
	} else {
		report.Thumbnail = thumb
		if opts.Resize {
			uploadPath = thumb.Path
		}
	}

	if opts.Resize && !opts.Size.IsZero() && opts.Size != s.cfg.DefaultThumbnailSize {
		sized, _, err := s.GetOrCreateThumbnail(image, path.String(), s.cfg.ThumbnailDir, opts.Size)
		if err != nil {
			s.logger.Warn("resized thumbnail failed, uploading original", "path", path.String(), "size", opts.Size.String(), "error", err)
			uploadPath = path.String()
		} else {
			uploadPath = sized.Path
		}
	}

	// Searched
	matches, err := s.SearchOrReuse(ctx, image, opts.Place, uploadPath, opts.Force)
	if err != nil {
		return nil, err
	}

	// Filtered
	matches = FilterMatches(matches, opts.MatchFilter)

	// Tagged
	reqs := make([]TagRequest, 0, len(matches))
	for _, m := range matches {
		reqs = append(reqs, TagRequest{MatchResult: m.MatchResult, URL: m.Link()})
	}
	tagsByResult := make(map[int64][]*sqlc.Tag, len(matches))
	for _, res := range s.fetcher.FetchTags(ctx, reqs) {
		tagsByResult[res.MatchResult.ID] = res.Tags
	}

	for _, m := range matches {
		report.Entries = append(report.Entries, ReportEntry{Match: m, Tags: tagsByResult[m.MatchResult.ID]})
	}

	if opts.WriteTags {
		if err := WriteTagFile(path.String(), report.Tags()); err != nil {
			return nil, err
		}
	}

	s.logger.Info("image processed", "path", path.String(), "checksum", image.Checksum, "matches", len(report.Entries))
	return report, nil
}

// ProcessFolder runs the pipeline on every file directly inside rawDir.
// Per-item failures are collected and the batch continues; onReport is called
// for every image that succeeds.
func (s *TaggerService) ProcessFolder(ctx context.Context, rawDir string, opts SearchOptions, onReport func(*ImageReport)) (*BatchResult, error) {
	dir, err := s.fsmgr.Resolve(rawDir)
	if err != nil {
		return nil, fmt.Errorf("resolving folder: %w", err)
	}
	if !dir.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir.String())
	}

	files, err := s.fsmgr.FindFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("listing folder: %w", err)
	}
	s.logger.Info("processing folder", "path", dir.String(), "files", len(files))

	result := &BatchResult{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		report, err := s.ProcessImage(ctx, file.String(), opts)
		if err != nil {
			s.logger.Error("image failed", "path", file.String(), "error", err)
			result.Failures = append(result.Failures, ItemFailure{Path: file.String(), Err: err})
			continue
		}
		result.Processed++
		if onReport != nil {
			onReport(report)
		}
	}
	return result, nil
}

// WriteTagFile appends the full names of tags to the sidecar file
// "<imagePath>.txt", one per line. The file is created if needed and never
// truncated.
func WriteTagFile(imagePath string, tags []*sqlc.Tag) error {
	if len(tags) == 0 {
		return nil
	}

	var b strings.Builder
	for _, t := range tags {
		b.WriteString(FullName(t))
		b.WriteByte('\n')
	}

	f, err := os.OpenFile(imagePath+".txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening tag file: %w", err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return fmt.Errorf("writing tag file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing tag file: %w", err)
	}
	return nil
}

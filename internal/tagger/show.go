package tagger

import (
	"fmt"

	"iqdbtag/internal/database/sqlc"
)

// ImageDetails is everything the cache knows about one image.
type ImageDetails struct {
	Image      *sqlc.Image
	Thumbnails []*sqlc.Thumbnail
	Entries    []ReportEntry
}

// ShowImage looks up the image at rawPath by content and returns its cached
// thumbnails, matches and tags. It never touches the network.
func (s *TaggerService) ShowImage(rawPath string) (*ImageDetails, error) {
	path, err := s.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, &ImageReadError{Path: rawPath, Err: err}
	}
	info, err := s.fsmgr.Inspect(path)
	if err != nil {
		return nil, err
	}

	image, err := s.database.FindImageByChecksum(info.Checksum)
	if err != nil {
		return nil, fmt.Errorf("finding image: %w", err)
	}
	if image == nil {
		return nil, fmt.Errorf("image %s has not been searched yet", path.String())
	}

	thumbs, err := s.database.ListThumbnails(image.ID)
	if err != nil {
		return nil, fmt.Errorf("listing thumbnails: %w", err)
	}
	matches, err := s.database.ListImageMatches(image.ID)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}

	details := &ImageDetails{Image: image, Thumbnails: thumbs}
	for _, m := range matches {
		tags, err := s.database.FindTagsForMatch(m.MatchResult.ID)
		if err != nil {
			return nil, fmt.Errorf("listing tags: %w", err)
		}
		details.Entries = append(details.Entries, ReportEntry{Match: m, Tags: tags})
	}
	return details, nil
}

package tagger

import (
	"fmt"
	"strconv"
	"strings"
)

// Place identifies a reverse-image-search backend.
// The integer values are persisted in image_matches.search_place.
type Place int

const (
	PlaceIQDB     Place = 0
	PlaceDanbooru Place = 1
)

// Places lists every supported search place.
var Places = []Place{PlaceIQDB, PlaceDanbooru}

// ParsePlace converts a CLI/config name ("iqdb", "danbooru") into a Place.
func ParsePlace(name string) (Place, error) {
	for _, p := range Places {
		if p.String() == strings.ToLower(strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown search place: %q", name)
}

func (p Place) String() string {
	switch p {
	case PlaceIQDB:
		return "iqdb"
	case PlaceDanbooru:
		return "danbooru"
	default:
		return "place(" + strconv.Itoa(int(p)) + ")"
	}
}

// Endpoint returns the default upload URL for the place.
func (p Place) Endpoint() string {
	switch p {
	case PlaceIQDB:
		return "https://iqdb.org/"
	case PlaceDanbooru:
		return "https://danbooru.iqdb.org/"
	default:
		return ""
	}
}

// Status is the match quality reported by the search page.
type Status int

const (
	StatusUnknown       Status = 0
	StatusBestMatch     Status = 1
	StatusPossibleMatch Status = 2
	StatusOther         Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusBestMatch:
		return "Best match"
	case StatusPossibleMatch:
		return "Possible match"
	case StatusOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// Rating is the content rating shown next to a match.
type Rating int

const (
	RatingUnknown  Rating = 0
	RatingSafe     Rating = 1
	RatingEro      Rating = 2
	RatingExplicit Rating = 3
)

var ratingNames = []struct {
	rating Rating
	name   string
}{
	{RatingSafe, "Safe"},
	{RatingEro, "Ero"},
	{RatingExplicit, "Explicit"},
}

func (r Rating) String() string {
	for _, rn := range ratingNames {
		if rn.rating == r {
			return rn.name
		}
	}
	return "Unknown"
}

// RatingFromText finds a "[Safe]"-style marker in text.
func RatingFromText(text string) Rating {
	for _, rn := range ratingNames {
		if strings.Contains(text, "["+rn.name+"]") {
			return rn.rating
		}
	}
	return RatingUnknown
}

// MatchFilter selects which stored matches go on to tagging and reporting.
type MatchFilter string

const (
	MatchFilterDefault   MatchFilter = "default"
	MatchFilterBestMatch MatchFilter = "best-match"
)

// ParseMatchFilter validates a filter name.
func ParseMatchFilter(name string) (MatchFilter, error) {
	switch MatchFilter(name) {
	case MatchFilterDefault, MatchFilterBestMatch:
		return MatchFilter(name), nil
	case "":
		return MatchFilterDefault, nil
	default:
		return "", fmt.Errorf("unknown match filter: %q", name)
	}
}

// Size is a thumbnail bounding box in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultThumbnailSize is the thumbnail every stored image gets.
var DefaultThumbnailSize = Size{Width: 150, Height: 150}

// ParseSize parses "WxH" (an "×" separator is accepted too).
func ParseSize(s string) (Size, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "×", "x")
	w, h, ok := strings.Cut(normalized, "x")
	if !ok {
		return Size{}, fmt.Errorf("invalid size %q: want WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Size{}, fmt.Errorf("invalid size width %q: %w", w, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Size{}, fmt.Errorf("invalid size height %q: %w", h, err)
	}
	if width <= 0 || height <= 0 {
		return Size{}, fmt.Errorf("invalid size %q: dimensions must be positive", s)
	}
	return Size{Width: width, Height: height}, nil
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// IsZero reports whether no size was given.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

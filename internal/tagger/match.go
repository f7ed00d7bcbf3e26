package tagger

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"iqdbtag/internal/database/sqlc"
)

// MatchItem is one candidate parsed from a search result page.
type MatchItem struct {
	Href       string
	Thumb      string
	Rating     Rating
	Width      int // 0 when the page did not show a size
	Height     int
	ImgAlt     string
	Similarity int
	Status     Status
}

// TagName is a scraped (namespace, name) pair. General tags have an empty namespace.
type TagName struct {
	Namespace string
	Name      string
}

func (t TagName) String() string {
	if t.Namespace != "" {
		return t.Namespace + ":" + t.Name
	}
	return t.Name
}

// FullName renders a stored tag as "namespace:name", or just the name.
func FullName(t *sqlc.Tag) string {
	return TagName{Namespace: t.Namespace, Name: t.Name}.String()
}

// Searcher uploads an image to a search place and parses the result page.
// Failures are returned as *SearchEndpointError.
type Searcher interface {
	Search(ctx context.Context, place Place, imagePath string) ([]MatchItem, error)
}

// PageFetcher downloads a tag source page.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// TagParser extracts tags from a downloaded page. Rules vary by host, so the
// result may legitimately be empty.
type TagParser interface {
	ParseTags(page []byte, pageURL string) ([]TagName, error)
}

// Match is a stored image match joined with its match result.
type Match struct {
	ImageMatch  sqlc.ImageMatch
	MatchResult sqlc.MatchResult
}

// Place returns the search place the match was found on.
func (m *Match) Place() Place { return Place(m.ImageMatch.SearchPlace) }

// Status returns the match status.
func (m *Match) Status() Status { return Status(m.ImageMatch.Status) }

// Rating returns the rating of the matched page.
func (m *Match) Rating() Rating { return Rating(m.MatchResult.Rating) }

// Link resolves the stored href into an absolute URL. iqdb emits
// protocol-relative links ("//danbooru.donmai.us/posts/1").
func (m *Match) Link() string {
	return ResolveLink(m.MatchResult.Href)
}

// Netloc returns a short, readable source-site name for the link.
func (m *Match) Netloc() string {
	u, err := url.Parse(m.Link())
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(u.Host, "www.")
	for _, ending := range []string{".net", ".com", ".us"} {
		if strings.HasSuffix(host, ending) {
			host = strings.TrimSuffix(host, ending)
			break
		}
	}
	return host
}

// Size returns "WxH" for the matched image, or "" when unknown.
func (m *Match) Size() string {
	if !m.MatchResult.Width.Valid || !m.MatchResult.Height.Valid {
		return ""
	}
	return fmt.Sprintf("%dx%d", m.MatchResult.Width.Int64, m.MatchResult.Height.Int64)
}

var httpsBase = &url.URL{Scheme: "https"}

// ResolveLink resolves href against "https:".
func ResolveLink(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return httpsBase.ResolveReference(ref).String()
}

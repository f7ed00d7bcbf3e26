package iqdb

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"iqdbtag/internal/tagger"
)

// ErrUnexpectedPage is returned when the page has no result container, which
// usually means an error page or a changed layout.
var ErrUnexpectedPage = errors.New("unexpected result page: no .pages container")

// ParsePage extracts the match items of an iqdb result page, in page order.
func ParsePage(r io.Reader) ([]tagger.MatchItem, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing result page: %w", err)
	}

	pages := doc.Find(".pages")
	if pages.Length() == 0 {
		return nil, ErrUnexpectedPage
	}

	var items []tagger.MatchItem
	var parseErr error
	pages.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		tableItems, err := parseTable(table)
		if err != nil {
			parseErr = fmt.Errorf("result table %d: %w", i, err)
			return false
		}
		items = append(items, tableItems...)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return items, nil
}

// statusFromHeader maps a table header to a match status. ok is false for
// tables that describe the upload itself rather than a match.
func statusFromHeader(header string) (status tagger.Status, ok bool) {
	switch strings.TrimSpace(header) {
	case "Your image", "No relevant matches":
		return tagger.StatusUnknown, false
	case "Best match", "Additional match", "Probable match:":
		return tagger.StatusBestMatch, true
	case "Possible match":
		return tagger.StatusPossibleMatch, true
	default:
		return tagger.StatusOther, true
	}
}

func parseTable(table *goquery.Selection) ([]tagger.MatchItem, error) {
	status, ok := statusFromHeader(table.Find("th").First().Text())
	if !ok {
		return nil, nil
	}

	cells := table.Find("td")
	if cells.Length() < 2 {
		return nil, fmt.Errorf("expected at least 2 cells, got %d", cells.Length())
	}

	similarity, err := parseSimilarity(cells.Last().Text())
	if err != nil {
		return nil, err
	}

	sizeAndRating := cells.Eq(cells.Length() - 2).Text()
	width, height := parseSize(sizeAndRating)

	item := tagger.MatchItem{
		Rating:     tagger.RatingFromText(sizeAndRating),
		Width:      width,
		Height:     height,
		Similarity: similarity,
		Status:     status,
	}

	img := table.Find("img").First()
	item.Thumb, _ = img.Attr("src")
	alt, _ := img.Attr("alt")
	if _, hasTitle := img.Attr("title"); alt == "[IMG]" && !hasTitle {
		alt = ""
	}
	item.ImgAlt = alt

	links := table.Find("a")
	if links.Length() > 2 {
		return nil, fmt.Errorf("expected at most 2 links, got %d", links.Length())
	}

	var items []tagger.MatchItem
	links.Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		linked := item
		linked.Href = href
		items = append(items, linked)
	})
	if len(items) == 0 {
		return nil, fmt.Errorf("match without link")
	}
	return items, nil
}

func parseSimilarity(text string) (int, error) {
	value, _, ok := strings.Cut(text, "% similarity")
	if !ok {
		return 0, fmt.Errorf("similarity not found in %q", strings.TrimSpace(text))
	}
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid similarity %q: %w", value, err)
	}
	return int(math.Round(f)), nil
}

// parseSize reads the leading "W×H" of text; zeros mean no size was shown.
func parseSize(text string) (int, int) {
	first, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	w, h, ok := strings.Cut(first, "×")
	if !ok {
		return 0, 0
	}
	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil {
		return 0, 0
	}
	return width, height
}

package tagsource

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"iqdbtag/internal/tagger"
)

// rule extracts tags from a parsed page. An empty result means the page does
// not use this layout.
type rule func(doc *goquery.Document) []tagger.TagName

// Parser picks extraction rules by host. Pages from unknown hosts go through
// every rule until one finds tags.
type Parser struct {
	hosts map[string][]rule
	all   []rule
}

// NewParser creates a Parser with the built-in rules.
func NewParser() *Parser {
	p := &Parser{
		hosts: make(map[string][]rule),
		all:   []rule{danbooruTags, sidebarTags, listTags, keywordTags},
	}
	p.register([]rule{danbooruTags}, "danbooru.donmai.us", "safebooru.donmai.us")
	p.register([]rule{sidebarTags}, "gelbooru.com", "yande.re", "konachan.com", "konachan.net")
	p.register([]rule{danbooruTags, sidebarTags}, "chan.sankakucomplex.com")
	p.register([]rule{keywordTags, listTags}, "e-shuushuu.net", "zerochan.net", "www.zerochan.net")
	return p
}

func (p *Parser) register(rules []rule, hosts ...string) {
	for _, h := range hosts {
		p.hosts[h] = rules
	}
}

// ParseTags extracts the tags of page, fetched from pageURL.
func (p *Parser) ParseTags(page []byte, pageURL string) ([]tagger.TagName, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	rules := p.all
	if u, err := url.Parse(pageURL); err == nil {
		if hostRules, ok := p.hosts[strings.ToLower(u.Host)]; ok {
			rules = hostRules
		}
	}

	for _, r := range rules {
		if names := dedupe(r(doc)); len(names) > 0 {
			return names, nil
		}
	}
	return nil, nil
}

// danbooruTags reads <li data-tag-name> entries from the per-category lists
// ("ul.artist-tag-list", "ul.character-tag-list", ...).
func danbooruTags(doc *goquery.Document) []tagger.TagName {
	var names []tagger.TagName
	doc.Find("ul[class$='-tag-list'] li[data-tag-name]").Each(func(_ int, li *goquery.Selection) {
		name, _ := li.Attr("data-tag-name")
		namespace := ""
		if class, ok := li.Parent().Attr("class"); ok {
			for _, c := range strings.Fields(class) {
				if strings.HasSuffix(c, "-tag-list") {
					namespace = strings.TrimSuffix(c, "-tag-list")
					break
				}
			}
		}
		names = append(names, newTagName(namespace, name))
	})
	return names
}

// sidebarTags reads <li class="tag-type-character"> entries as used by
// gelbooru, moebooru and sankaku.
func sidebarTags(doc *goquery.Document) []tagger.TagName {
	var names []tagger.TagName
	doc.Find("li[class*='tag-type-']").Each(func(_ int, li *goquery.Selection) {
		namespace := ""
		for _, c := range strings.Fields(li.AttrOr("class", "")) {
			if strings.HasPrefix(c, "tag-type-") {
				namespace = strings.TrimPrefix(c, "tag-type-")
				break
			}
		}

		name := li.AttrOr("data-name", "")
		if name == "" {
			li.Find("a").Each(func(_ int, a *goquery.Selection) {
				href := a.AttrOr("href", "")
				text := strings.TrimSpace(a.Text())
				if text == "" || text == "?" || text == "+" || text == "-" {
					return
				}
				if strings.Contains(href, "tags=") || name == "" {
					name = text
				}
			})
		}
		names = append(names, newTagName(namespace, name))
	})
	return names
}

// listTags reads links from a generic "ul.tags" list.
func listTags(doc *goquery.Document) []tagger.TagName {
	var names []tagger.TagName
	doc.Find("ul.tags a, ul#tags a").Each(func(_ int, a *goquery.Selection) {
		names = append(names, newTagName("", a.Text()))
	})
	return names
}

// keywordTags reads the comma-separated keywords meta tag.
func keywordTags(doc *goquery.Document) []tagger.TagName {
	content, ok := doc.Find("meta[name='keywords']").First().Attr("content")
	if !ok {
		return nil
	}
	var names []tagger.TagName
	for _, kw := range strings.Split(content, ",") {
		names = append(names, newTagName("", kw))
	}
	return names
}

// newTagName normalises a scraped tag: "general" becomes the empty namespace
// and spaces in names become underscores.
func newTagName(namespace, name string) tagger.TagName {
	namespace = strings.ToLower(strings.TrimSpace(namespace))
	if namespace == "general" || namespace == "0" {
		namespace = ""
	}
	name = strings.Join(strings.Fields(name), "_")
	return tagger.TagName{Namespace: namespace, Name: name}
}

func dedupe(names []tagger.TagName) []tagger.TagName {
	seen := make(map[tagger.TagName]bool, len(names))
	var out []tagger.TagName
	for _, n := range names {
		if n.Name == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

var _ tagger.TagParser = (*Parser)(nil)

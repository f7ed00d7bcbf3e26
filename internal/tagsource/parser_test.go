package tagsource

import (
	"testing"

	"iqdbtag/internal/tagger"
)

const danbooruPage = `<html><body><section id="tag-list">
<h3 class="artist-tag-list">Artist</h3>
<ul class="artist-tag-list"><li class="tag-type-1" data-tag-name="some_artist"><a class="search-tag" href="/posts?tags=some_artist">some artist</a></li></ul>
<h3 class="character-tag-list">Character</h3>
<ul class="character-tag-list"><li class="tag-type-4" data-tag-name="hatsune_miku"><a class="search-tag" href="/posts?tags=hatsune_miku">hatsune miku</a></li></ul>
<h3 class="general-tag-list">General</h3>
<ul class="general-tag-list">
<li class="tag-type-0" data-tag-name="1girl"><a class="search-tag" href="/posts?tags=1girl">1girl</a></li>
<li class="tag-type-0" data-tag-name="red_background"><a class="search-tag" href="/posts?tags=red_background">red background</a></li>
</ul>
</section></body></html>`

const gelbooruPage = `<html><body><ul id="tag-list">
<li class="tag-type-copyright"><a href="index.php?page=wiki&amp;s=list&amp;search=vocaloid">?</a> <a href="index.php?page=post&amp;s=list&amp;tags=vocaloid">vocaloid</a> <span>100</span></li>
<li class="tag-type-general"><a href="index.php?page=wiki&amp;s=list&amp;search=long_hair">?</a> <a href="index.php?page=post&amp;s=list&amp;tags=long_hair">long hair</a> <span>50</span></li>
<li class="tag-type-general"><a href="index.php?page=wiki&amp;s=list&amp;search=long_hair">?</a> <a href="index.php?page=post&amp;s=list&amp;tags=long_hair">long hair</a></li>
</ul></body></html>`

const keywordsPage = `<html><head><meta name="keywords" content="Hatsune Miku, VOCALOID, Fanart"></head><body></body></html>`

func TestParser_ParseTags(t *testing.T) {
	tests := []struct {
		name string
		page string
		url  string
		want []tagger.TagName
	}{
		{
			name: "danbooru categories",
			page: danbooruPage,
			url:  "https://danbooru.donmai.us/posts/1234",
			want: []tagger.TagName{
				{Namespace: "artist", Name: "some_artist"},
				{Namespace: "character", Name: "hatsune_miku"},
				{Name: "1girl"},
				{Name: "red_background"},
			},
		},
		{
			name: "gelbooru sidebar",
			page: gelbooruPage,
			url:  "https://gelbooru.com/index.php?page=post&s=view&id=99",
			want: []tagger.TagName{
				{Namespace: "copyright", Name: "vocaloid"},
				{Name: "long_hair"},
			},
		},
		{
			name: "keywords on known host",
			page: keywordsPage,
			url:  "https://www.zerochan.net/555",
			want: []tagger.TagName{
				{Name: "Hatsune_Miku"},
				{Name: "VOCALOID"},
				{Name: "Fanart"},
			},
		},
		{
			name: "unknown host tries every rule",
			page: danbooruPage,
			url:  "https://booru.example.org/posts/1",
			want: []tagger.TagName{
				{Namespace: "artist", Name: "some_artist"},
				{Namespace: "character", Name: "hatsune_miku"},
				{Name: "1girl"},
				{Name: "red_background"},
			},
		},
		{
			name: "page without tags",
			page: "<html><body><p>nothing here</p></body></html>",
			url:  "https://example.com/1",
			want: nil,
		},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseTags([]byte(tt.page), tt.url)
			if err != nil {
				t.Fatalf("ParseTags() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseTags() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ParseTags()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewTagName(t *testing.T) {
	tests := []struct {
		namespace, name string
		want            tagger.TagName
	}{
		{"general", "long hair", tagger.TagName{Name: "long_hair"}},
		{"Character", " hatsune  miku ", tagger.TagName{Namespace: "character", Name: "hatsune_miku"}},
		{"", "1girl", tagger.TagName{Name: "1girl"}},
	}
	for _, tt := range tests {
		if got := newTagName(tt.namespace, tt.name); got != tt.want {
			t.Errorf("newTagName(%q, %q) = %v, want %v", tt.namespace, tt.name, got, tt.want)
		}
	}
}

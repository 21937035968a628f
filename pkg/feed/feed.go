// Package feed parses subreddit RSS and Atom feeds into post records.
package feed

import (
	"encoding/xml"
	"errors"
	"strings"
	"time"

	"github.com/daniel-butler/product-trends/pkg/extractor"
	"github.com/daniel-butler/product-trends/pkg/store"
)

// Feed represents a parsed RSS or Atom feed.
type Feed struct {
	Title string
	URL   string
	Items []Item
}

// Item represents a single entry in a feed.
type Item struct {
	ID        string
	Title     string
	URL       string // outbound link for link posts, else the entry link
	Body      string // plain text
	Subreddit string
	Published time.Time
	Links     []extractor.Link
}

// RSS 2.0 structures
type rss2Feed struct {
	XMLName xml.Name    `xml:"rss"`
	Channel rss2Channel `xml:"channel"`
}

type rss2Channel struct {
	Title string     `xml:"title"`
	Link  string     `xml:"link"`
	Items []rss2Item `xml:"item"`
}

type rss2Item struct {
	GUID        string `xml:"guid"`
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Content     string `xml:"encoded"`
	Category    string `xml:"category"`
	PubDate     string `xml:"pubDate"`
}

// Atom structures
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomEntry struct {
	ID        string         `xml:"id"`
	Title     string         `xml:"title"`
	Links     []atomLink     `xml:"link"`
	Content   string         `xml:"content"`
	Summary   string         `xml:"summary"`
	Category  []atomCategory `xml:"category"`
	Published string         `xml:"published"`
	Updated   string         `xml:"updated"`
}

// ParseFeed parses RSS 2.0 or Atom feed data.
func ParseFeed(data []byte) (*Feed, error) {
	if len(data) == 0 {
		return nil, errors.New("empty feed data")
	}

	var rss rss2Feed
	if err := xml.Unmarshal(data, &rss); err == nil && rss.Channel.Title != "" {
		return parseRSS2(&rss), nil
	}

	var atom atomFeed
	if err := xml.Unmarshal(data, &atom); err == nil && atom.Title != "" {
		return parseAtom(&atom), nil
	}

	return nil, errors.New("unable to parse feed as RSS or Atom")
}

func parseRSS2(rss *rss2Feed) *Feed {
	feed := &Feed{
		Title: rss.Channel.Title,
		URL:   rss.Channel.Link,
		Items: make([]Item, 0, len(rss.Channel.Items)),
	}

	for _, item := range rss.Channel.Items {
		content := item.Content
		if content == "" {
			content = item.Description
		}
		id := item.GUID
		if id == "" {
			id = item.Link
		}
		published, _ := time.Parse(time.RFC1123Z, strings.TrimSpace(item.PubDate))

		feed.Items = append(feed.Items, newItem(id, item.Title, item.Link, content, item.Category, published))
	}
	return feed
}

func parseAtom(atom *atomFeed) *Feed {
	feed := &Feed{
		Title: atom.Title,
		URL:   strings.TrimSuffix(alternate(atom.Links), "/"),
		Items: make([]Item, 0, len(atom.Entries)),
	}

	for _, entry := range atom.Entries {
		entryURL := alternate(entry.Links)

		content := entry.Content
		if content == "" {
			content = entry.Summary
		}
		id := entry.ID
		if id == "" {
			id = entryURL
		}
		var category string
		if len(entry.Category) > 0 {
			category = entry.Category[0].Term
		}
		stamp := entry.Published
		if stamp == "" {
			stamp = entry.Updated
		}
		published, _ := time.Parse(time.RFC3339, strings.TrimSpace(stamp))

		feed.Items = append(feed.Items, newItem(id, entry.Title, entryURL, content, category, published))
	}
	return feed
}

// alternate finds the main link (prefer alternate, fallback to first).
func alternate(links []atomLink) string {
	for _, link := range links {
		if link.Rel == "alternate" || link.Rel == "" {
			return link.Href
		}
	}
	if len(links) > 0 {
		return links[0].Href
	}
	return ""
}

func newItem(id, title, link, content, category string, published time.Time) Item {
	links := extractor.ExtractLinks(content)
	url := link
	if outbound, ok := extractor.LinkByText(links, "[link]"); ok {
		url = outbound
	}
	return Item{
		ID:        strings.TrimPrefix(strings.TrimSpace(id), "t3_"),
		Title:     extractor.PlainText(title),
		URL:       url,
		Body:      extractor.PostBody(content),
		Subreddit: category,
		Published: published,
		Links:     links,
	}
}

// Post converts the item into a post record of domain. subreddit is used
// when the entry carries no category.
func (it *Item) Post(domain, subreddit string) *store.Post {
	sub := it.Subreddit
	if sub == "" {
		sub = subreddit
	}
	return &store.Post{
		Domain:    domain,
		ID:        it.ID,
		Subreddit: sub,
		Title:     it.Title,
		Body:      it.Body,
		URL:       it.URL,
		CreatedAt: it.Published,
	}
}

// Package extractor turns feed HTML into the plain text and links a post
// record needs.
package extractor

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Link represents an extracted hyperlink.
type Link struct {
	URL  string
	Text string
}

// hrefRegex matches href attributes in anchor tags
var hrefRegex = regexp.MustCompile(`<a[^>]+href=["']([^"']+)["'][^>]*>([^<]*)</a>`)

// ExtractLinks extracts all http/https links from HTML content.
// It ignores anchors (#), javascript:, and mailto: links.
func ExtractLinks(html string) []Link {
	if html == "" {
		return []Link{}
	}

	matches := hrefRegex.FindAllStringSubmatch(html, -1)
	seen := make(map[string]bool)
	links := []Link{}

	for _, match := range matches {
		url := strings.TrimSpace(match[1])
		text := strings.TrimSpace(match[2])

		if strings.HasPrefix(url, "#") ||
			strings.HasPrefix(url, "javascript:") ||
			strings.HasPrefix(url, "mailto:") {
			continue
		}

		normalizedURL := strings.TrimSuffix(url, "/")
		if seen[normalizedURL] {
			continue
		}
		seen[normalizedURL] = true

		links = append(links, Link{URL: url, Text: text})
	}
	return links
}

// LinkByText returns the URL of the first link whose text is text.
func LinkByText(links []Link, text string) (string, bool) {
	for _, l := range links {
		if l.Text == text {
			return l.URL, true
		}
	}
	return "", false
}

var (
	// Reddit appends "submitted by /u/name [link] [comments]" to every entry.
	redditFooter = regexp.MustCompile(`(?s)\s*submitted\s+by\s+/u/\S+.*$`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// PlainText strips tags, decodes entities, normalises to NFKC and
// collapses runs of whitespace.
func PlainText(s string) string {
	s = stripTags(s)
	s = html.UnescapeString(s)
	s = norm.NFKC.String(s)
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// PostBody is PlainText with the Reddit submission footer removed.
func PostBody(s string) string {
	return strings.TrimSpace(redditFooter.ReplaceAllString(PlainText(s), ""))
}

// stripTags replaces every tag with a space, dropping HTML comments.
func stripTags(s string) string {
	var result strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
			result.WriteRune(' ')
		case !inTag:
			result.WriteRune(r)
		}
	}
	return result.String()
}

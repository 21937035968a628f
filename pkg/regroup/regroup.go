// Package regroup merges tagged sub-word fragments back into whole entity
// strings.
package regroup

import (
	"context"
	"strings"
	"time"

	"github.com/daniel-butler/product-trends/pkg/tagger"
)

// JoinMarker is the WordPiece prefix that marks a fragment continuing the
// previous word.
const JoinMarker = "##"

// Group converts an ordered fragment sequence into entity strings, in order
// of first appearance. A B- fragment opens a new entity, an I- fragment
// extends the open one and anything else closes it. An I- fragment with no
// open entity is dropped.
func Group(frags []tagger.Fragment) []string {
	entities := []string{}
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		if ent := join(current); ent != "" {
			entities = append(entities, ent)
		}
		current = nil
	}

	for _, f := range frags {
		switch f.Kind() {
		case tagger.Begin:
			flush()
			current = []string{f.Text}
		case tagger.Inside:
			if len(current) > 0 {
				current = append(current, f.Text)
			}
		default:
			flush()
		}
	}
	flush()

	return entities
}

func join(parts []string) string {
	s := strings.Join(parts, "")
	s = strings.ReplaceAll(s, JoinMarker, "")
	return strings.TrimSpace(s)
}

// Dedup removes repeated entities, keeping the first occurrence of each.
// Comparison is exact, so "iPhone 15" and "iphone 15" both survive.
func Dedup(entities []string) []string {
	seen := make(map[string]bool, len(entities))
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// PostText builds the text handed to the tagger for one post.
func PostText(title, body string) string {
	return strings.TrimSpace(title + ". " + body)
}

// Extract tags text and regroups the result into deduplicated entities.
// If the tagger fails the error is returned with no entities; callers treat
// that as a post with zero entities. A positive timeout bounds the call.
func Extract(ctx context.Context, t tagger.Tagger, text string, timeout time.Duration) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	frags, err := t.Tag(ctx, text)
	if err != nil {
		return nil, err
	}
	return Dedup(Group(frags)), nil
}

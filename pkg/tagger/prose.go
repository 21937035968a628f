package tagger

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// ProseTagger tags text locally with prose's entity chunker. It works on
// whole words, so every word after the first carries a leading space and
// multi-word entities regroup as "Galaxy S24" rather than "GalaxyS24".
type ProseTagger struct{}

// NewProseTagger returns a Tagger backed by prose.
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// Tag returns one fragment per prose token, labelled with its IOB tag.
func (ProseTagger) Tag(ctx context.Context, text string) ([]Fragment, error) {
	if strings.TrimSpace(text) == "" {
		return []Fragment{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("prose document: %w", err)
	}

	tokens := doc.Tokens()
	frags := make([]Fragment, 0, len(tokens))
	for i, tok := range tokens {
		word := tok.Text
		if i > 0 {
			word = " " + word
		}
		frags = append(frags, Fragment{Text: word, Tag: tok.Label})
	}
	return frags, nil
}

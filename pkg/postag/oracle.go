// Package postag filters entity strings by the part-of-speech shape of
// their tokens.
package postag

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Penn Treebank tags accepted in product names.
const (
	ProperNoun       = "NNP"
	ProperNounPlural = "NNPS"
	Noun             = "NN"
	NounPlural       = "NNS"
	CardinalNumber   = "CD"
	ForeignWord      = "FW"
)

// NounTags is the allow-set shared by every product domain.
var NounTags = []string{ProperNoun, ProperNounPlural, Noun, NounPlural, CardinalNumber}

// Oracle tokenizes a text and returns one POS tag per token.
type Oracle interface {
	TagPOS(ctx context.Context, text string) ([]string, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, text string) ([]string, error)

// TagPOS calls f(ctx, text).
func (f OracleFunc) TagPOS(ctx context.Context, text string) ([]string, error) {
	return f(ctx, text)
}

// ProseOracle tags text with prose's averaged perceptron tagger.
type ProseOracle struct{}

// NewProseOracle returns an Oracle backed by prose.
func NewProseOracle() *ProseOracle {
	return &ProseOracle{}
}

// TagPOS tokenizes text with prose and returns the Penn Treebank tag of
// each token. Blank text has no tokens.
func (ProseOracle) TagPOS(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("prose document: %w", err)
	}

	tokens := doc.Tokens()
	tags := make([]string, len(tokens))
	for i, tok := range tokens {
		tags[i] = tok.Tag
	}
	return tags, nil
}

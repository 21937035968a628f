// Package tagger provides token-classification oracles that turn text into
// tagged word fragments.
package tagger

import (
	"context"
	"strings"
)

// Kind is the IOB prefix of a fragment tag.
type Kind int

const (
	// Outside marks a fragment that is not part of any entity ("O", "" or
	// anything unrecognised).
	Outside Kind = iota
	// Begin marks the first fragment of an entity ("B-<TYPE>").
	Begin
	// Inside marks a continuation fragment ("I-<TYPE>").
	Inside
)

func (k Kind) String() string {
	switch k {
	case Begin:
		return "B"
	case Inside:
		return "I"
	default:
		return "O"
	}
}

// Fragment is one tagged word or sub-word unit emitted by a Tagger.
type Fragment struct {
	Text string
	Tag  string // B-ORG, I-ORG, O or ""
}

// Kind returns the parsed IOB prefix of the fragment's tag.
func (f Fragment) Kind() Kind {
	k, _ := ParseTag(f.Tag)
	return k
}

// ParseTag splits a tag like "B-ORG" into its kind and entity type.
// Tags without a B-/I- prefix and a non-empty type are Outside.
func ParseTag(tag string) (Kind, string) {
	prefix, typ, ok := strings.Cut(strings.TrimSpace(tag), "-")
	if !ok || typ == "" {
		return Outside, ""
	}
	switch prefix {
	case "B":
		return Begin, typ
	case "I":
		return Inside, typ
	default:
		return Outside, ""
	}
}

// Tagger classifies the tokens of a text. Implementations must be safe to
// call independently for every post; no session state is shared.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]Fragment, error)
}

// TaggerFunc adapts a plain function to the Tagger interface.
type TaggerFunc func(ctx context.Context, text string) ([]Fragment, error)

// Tag calls f(ctx, text).
func (f TaggerFunc) Tag(ctx context.Context, text string) ([]Fragment, error) {
	return f(ctx, text)
}

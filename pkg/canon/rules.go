// Package canon maps raw product mentions to canonical display names using
// an ordered table of full-match patterns.
package canon

import (
	"fmt"
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Template builds a canonical name from the groups captured by a pattern.
// It must be pure and tolerate any optional group being empty.
type Template func(m Match) string

// Pattern is one entry of a rule table: an expression matched against the
// whole lower-cased candidate, and the template that names the match.
// Expressions are anchored automatically and should use named groups.
type Pattern struct {
	Name     string
	Expr     string
	Template Template
}

// Config describes a rule set before compilation.
type Config struct {
	Domain        string
	GenericBrands []string
	NoisyTerms    []string
	// Patterns are tried in slice order; the first full match wins.
	Patterns []Pattern
	// MinLength is the normalized length a candidate must exceed to be
	// kept by the title-case fallback.
	MinLength int
}

type rule struct {
	name     string
	re       *regexp.Regexp
	template Template
}

// Rules is a compiled, immutable rule set for one product domain.
type Rules struct {
	domain        string
	genericBrands mapset.Set[string]
	noisyTerms    mapset.Set[string]
	rules         []rule
	minLength     int
}

// NewRules compiles cfg. Stop terms are lower-cased and trimmed so they
// compare against normalized candidates.
func NewRules(cfg Config) (*Rules, error) {
	r := &Rules{
		domain:        cfg.Domain,
		genericBrands: stopSet(cfg.GenericBrands),
		noisyTerms:    stopSet(cfg.NoisyTerms),
		rules:         make([]rule, 0, len(cfg.Patterns)),
		minLength:     cfg.MinLength,
	}

	for i, p := range cfg.Patterns {
		if p.Template == nil {
			return nil, fmt.Errorf("%s pattern %d (%s): nil template", cfg.Domain, i, p.Name)
		}
		re, err := regexp.Compile(`^(?:` + p.Expr + `)$`)
		if err != nil {
			return nil, fmt.Errorf("%s pattern %d (%s): %w", cfg.Domain, i, p.Name, err)
		}
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		r.rules = append(r.rules, rule{name: name, re: re, template: p.Template})
	}

	return r, nil
}

// MustRules is like NewRules but panics on error. It is meant for the
// built-in tables, which are fixed at compile time.
func MustRules(cfg Config) *Rules {
	r, err := NewRules(cfg)
	if err != nil {
		panic(err)
	}
	return r
}

func stopSet(terms []string) mapset.Set[string] {
	s := mapset.NewThreadUnsafeSet[string]()
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			s.Add(t)
		}
	}
	return s
}

// Domain returns the product domain the rules belong to.
func (r *Rules) Domain() string { return r.domain }

// Len returns the number of patterns.
func (r *Rules) Len() int { return len(r.rules) }

// IsStopTerm reports whether a normalized candidate is a generic brand or
// a noise term.
func (r *Rules) IsStopTerm(normalized string) bool {
	return r.genericBrands.Contains(normalized) || r.noisyTerms.Contains(normalized)
}

// With returns a copy of r whose stop-term sets also contain the given
// extra terms. The receiver is not modified.
func (r *Rules) With(extraBrands, extraNoise []string) *Rules {
	cp := *r
	cp.genericBrands = r.genericBrands.Union(stopSet(extraBrands))
	cp.noisyTerms = r.noisyTerms.Union(stopSet(extraNoise))
	return &cp
}

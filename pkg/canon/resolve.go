package canon

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// TemplateError reports a template that panicked while naming a match.
type TemplateError struct {
	Rule      string
	Candidate string
	Cause     any
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s failed on %q: %v", e.Rule, e.Candidate, e.Cause)
}

// Normalize lower-cases and trims a candidate.
func Normalize(candidate string) string {
	return strings.ToLower(strings.TrimSpace(candidate))
}

// Resolve maps candidate to its canonical name. ok is false when the
// candidate is a stop term, or matches nothing and is too short to keep.
// A non-nil error means the matching rule's template failed; the
// candidate should be skipped.
//
// Resolve is a pure function of the candidate and the rules.
func (r *Rules) Resolve(candidate string) (name string, ok bool, err error) {
	normalized := Normalize(candidate)
	if normalized == "" || r.IsStopTerm(normalized) {
		return "", false, nil
	}

	for _, rl := range r.rules {
		m := rl.re.FindStringSubmatch(normalized)
		if m == nil {
			continue
		}
		named, terr := apply(rl, normalized, m)
		if terr != nil {
			return "", false, terr
		}
		named = strings.TrimSpace(named)
		return named, named != "", nil
	}

	if utf8.RuneCountInString(normalized) > r.minLength {
		return Title(strings.TrimSpace(candidate)), true, nil
	}
	return "", false, nil
}

// RuleFor returns the name of the first rule matching candidate, or "" when
// none does. Stop terms are not consulted.
func (r *Rules) RuleFor(candidate string) string {
	normalized := Normalize(candidate)
	for _, rl := range r.rules {
		if rl.re.MatchString(normalized) {
			return rl.name
		}
	}
	return ""
}

func apply(rl rule, candidate string, submatches []string) (name string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &TemplateError{Rule: rl.name, Candidate: candidate, Cause: p}
		}
	}()

	groups := make(map[string]string, len(submatches))
	for i, g := range rl.re.SubexpNames() {
		if i == 0 || g == "" {
			continue
		}
		groups[g] = submatches[i]
	}
	return rl.template(Match{groups: groups}), nil
}

// Resolver resolves batches of candidates, logging and skipping those
// whose template fails.
type Resolver struct {
	rules  *Rules
	logger *slog.Logger
}

// NewResolver returns a Resolver over rules. A nil logger means
// slog.Default().
func NewResolver(rules *Rules, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{rules: rules, logger: logger}
}

// Rules returns the rule set in use.
func (r *Resolver) Rules() *Rules { return r.rules }

// ResolveAll resolves every candidate in order and returns the canonical
// names of those that resolved, plus the number of template failures.
func (r *Resolver) ResolveAll(candidates []string) ([]string, int) {
	names := make([]string, 0, len(candidates))
	failed := 0
	for _, c := range candidates {
		name, ok, err := r.rules.Resolve(c)
		if err != nil {
			failed++
			r.logger.Warn("skipping candidate", "domain", r.rules.domain, "candidate", c, "error", err)
			continue
		}
		if ok {
			names = append(names, name)
		}
	}
	return names, failed
}

package canon

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Match exposes the named groups captured by a pattern. Absent groups read
// as the empty string.
type Match struct {
	groups map[string]string
}

// NewMatch builds a Match from group names to values. It is mainly useful
// for exercising templates directly.
func NewMatch(groups map[string]string) Match {
	return Match{groups: groups}
}

// Get returns the captured text of group name, or "".
func (m Match) Get(name string) string {
	return m.groups[name]
}

// Has reports whether group name captured non-empty text.
func (m Match) Has(name string) bool {
	return m.groups[name] != ""
}

// Or returns the captured text of group name, or def when it is empty.
func (m Match) Or(name, def string) string {
	if v := m.groups[name]; v != "" {
		return v
	}
	return def
}

// Title returns the group title-cased ("pro" -> "Pro").
func (m Match) Title(name string) string {
	return Title(m.groups[name])
}

// Upper returns the group upper-cased ("m3" -> "M3").
func (m Match) Upper(name string) string {
	return strings.ToUpper(m.groups[name])
}

// Model returns the group cased as a model designation: codes that contain
// a digit or are at most two letters are upper-cased, words are
// title-cased.
func (m Match) Model(name string) string {
	return Model(m.groups[name])
}

// Title title-cases every word of s.
func Title(s string) string {
	return cases.Title(language.Und).String(s)
}

// Model cases s as a model designation; see Match.Model.
func Model(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 2 || strings.IndexFunc(s, unicode.IsDigit) >= 0 {
		return strings.ToUpper(s)
	}
	return Title(s)
}

// Join joins the non-empty parts with single spaces.
func Join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// Package domain holds the product categories the trend pipeline knows
// about: their stop terms, POS allow-sets and canonical-name rule tables.
package domain

import (
	"errors"
	"fmt"

	"github.com/daniel-butler/product-trends/pkg/canon"
	"github.com/daniel-butler/product-trends/pkg/postag"
)

// ErrUnknownDomain is returned for a domain name with no rule table.
var ErrUnknownDomain = errors.New("unknown domain")

// Built-in domain names.
const (
	Phones  = "phones"
	Laptops = "laptops"
	Tablets = "tablets"
)

// DefaultTopN is the ranking length when neither config nor caller sets one.
const DefaultTopN = 30

// Domain is the immutable configuration of one product category.
type Domain struct {
	Name       string
	Label      string // singular display noun, e.g. "Smartphone"
	Rules      *canon.Rules
	POSTags    []string
	TopN       int
	Subreddits []string // feeds collected for this domain
}

// Overrides adjusts a built-in domain from user configuration.
type Overrides struct {
	ExtraGenericBrands []string
	ExtraNoisyTerms    []string
	TopN               int
	Subreddits         []string // replaces the built-in list when set
}

type builtin struct {
	label      string
	config     func() canon.Config
	posTags    []string
	subreddits []string
}

func builtins() map[string]builtin {
	withFW := append(append([]string{}, postag.NounTags...), postag.ForeignWord)
	return map[string]builtin{
		Phones: {
			label: "Smartphone", config: phoneConfig, posTags: postag.NounTags,
			subreddits: []string{
				"smartphones", "SuggestASmartphone", "PickMeAPhone", "PickAnAndroidForMe", "phones",
				"iphone", "GooglePixel", "samsung", "oneplus", "Xiaomi", "motorola",
			},
		},
		Laptops: {
			label: "Laptop", config: laptopConfig, posTags: withFW,
			subreddits: []string{
				"laptops", "ThinkPad", "Surface", "macbook", "Apple",
				"GamingLaptops", "Ultrabooks", "LaptopDeals", "Lenovo", "Acer",
			},
		},
		Tablets: {
			label: "Tablet", config: tabletConfig, posTags: withFW,
			subreddits: []string{
				"tablets", "ipad", "Surface", "Apple", "AndroidTablets", "Samsung",
				"GalaxyTab", "tabletdeals", "lenovo", "Xiaomi", "MiPad", "oneplus",
			},
		},
	}
}

// Names lists the built-in domains in display order.
func Names() []string {
	return []string{Phones, Laptops, Tablets}
}

// Known reports whether name is a built-in domain.
func Known(name string) bool {
	_, ok := builtins()[name]
	return ok
}

// Registry holds the domains compiled for one process.
type Registry struct {
	domains map[string]*Domain
}

// NewRegistry compiles every built-in domain, applying overrides by name.
func NewRegistry(overrides map[string]Overrides) (*Registry, error) {
	for name := range overrides {
		if !Known(name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, name)
		}
	}

	reg := &Registry{domains: make(map[string]*Domain)}
	for name, b := range builtins() {
		rules, err := canon.NewRules(b.config())
		if err != nil {
			return nil, fmt.Errorf("compiling %s rules: %w", name, err)
		}

		d := &Domain{
			Name:       name,
			Label:      b.label,
			Rules:      rules,
			POSTags:    b.posTags,
			TopN:       DefaultTopN,
			Subreddits: b.subreddits,
		}
		if o, ok := overrides[name]; ok {
			d.Rules = rules.With(o.ExtraGenericBrands, o.ExtraNoisyTerms)
			if o.TopN > 0 {
				d.TopN = o.TopN
			}
			if len(o.Subreddits) > 0 {
				d.Subreddits = o.Subreddits
			}
		}
		reg.domains[name] = d
	}
	return reg, nil
}

// Get returns the named domain.
func (r *Registry) Get(name string) (*Domain, error) {
	d, ok := r.domains[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, name)
	}
	return d, nil
}

// All returns every domain in display order.
func (r *Registry) All() []*Domain {
	out := make([]*Domain, 0, len(r.domains))
	for _, name := range Names() {
		if d, ok := r.domains[name]; ok {
			out = append(out, d)
		}
	}
	return out
}

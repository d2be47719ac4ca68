package service

import (
	"fmt"
	"strings"
)

// componentAliases maps each canonical component family to the spellings
// that appear across take-off sheets and spool registers. A lookup of any
// member returns the whole family, so ELBOW demand can draw down ELB stock.
var componentAliases = map[string][]string{
	"FLANGE":  {"FLANGE", "FLG", "FLAN", "FLN"},
	"ELBOW":   {"ELBOW", "ELB", "ELL", "ELBO"},
	"TEE":     {"TEE"},
	"REDUCER": {"REDUCER", "RED", "REDU", "CON", "CONN", "ECC"},
	"CAP":     {"CAP"},
	"PIPE":    {"PIPE", "PIP"},
}

// EquivalenceResolver answers "which component type spellings mean the same
// part". The alias table is validated once at construction; lookups after
// that cannot fail.
type EquivalenceResolver struct {
	canonical map[string]string   // alias -> canonical family
	families  map[string][]string // canonical family -> all members
}

// NewEquivalenceResolver builds the resolver from the static alias table,
// rejecting any spelling claimed by two families.
func NewEquivalenceResolver() (*EquivalenceResolver, error) {
	return newEquivalenceResolver(componentAliases)
}

func newEquivalenceResolver(table map[string][]string) (*EquivalenceResolver, error) {
	r := &EquivalenceResolver{
		canonical: make(map[string]string),
		families:  make(map[string][]string),
	}
	for family, aliases := range table {
		family = strings.ToUpper(family)
		members := make([]string, 0, len(aliases))
		for _, alias := range aliases {
			alias = strings.ToUpper(strings.TrimSpace(alias))
			if owner, taken := r.canonical[alias]; taken && owner != family {
				return nil, fmt.Errorf("alias %q claimed by both %s and %s", alias, owner, family)
			}
			r.canonical[alias] = family
			members = append(members, alias)
		}
		r.families[family] = members
	}
	return r, nil
}

// Resolve returns every spelling equivalent to the given component type,
// upper-cased. An unknown type resolves to just itself, so unmapped
// components still match their own exact spelling.
func (r *EquivalenceResolver) Resolve(componentType string) []string {
	key := strings.ToUpper(strings.TrimSpace(componentType))
	if family, ok := r.canonical[key]; ok {
		members := r.families[family]
		out := make([]string, len(members))
		copy(out, members)
		return out
	}
	return []string{key}
}

// Canonical returns the family name for a component type, or the upper-cased
// input when no family claims it.
func (r *EquivalenceResolver) Canonical(componentType string) string {
	key := strings.ToUpper(strings.TrimSpace(componentType))
	if family, ok := r.canonical[key]; ok {
		return family
	}
	return key
}

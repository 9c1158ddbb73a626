// Package query answers natural-language questions about a case
// dataset by matching them against a fixed table of intent patterns.
package query

import (
	"strings"
)

// resolveTier attempts to match a queried name against the known
// values, returning the matches in dataset order.
type resolveTier func(name string, values []string) []string

// NameResolver resolves a name as typed by a user onto the canonical
// names present in a dataset. Tiers run strictest-first: exact
// case-insensitive match, then substring containment, then individual
// token containment for queries that wrap the name in extra words.
type NameResolver struct {
	tiers []resolveTier
}

// NewNameResolver builds the standard three-tier resolver.
func NewNameResolver() *NameResolver {
	return &NameResolver{tiers: []resolveTier{
		tierExact,
		tierSubstring,
		tierTokens,
	}}
}

// Resolve finds the canonical value for name. When a tier yields
// several candidates the first in dataset order wins, preserving its
// original casing. Returns false when no tier matches.
func (r *NameResolver) Resolve(name string, values []string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", false
	}
	for _, tier := range r.tiers {
		if matches := tier(needle, values); len(matches) > 0 {
			return matches[0], true
		}
	}
	return "", false
}

func tierExact(name string, values []string) []string {
	var out []string
	for _, v := range values {
		if strings.ToLower(v) == name {
			out = append(out, v)
		}
	}
	return out
}

func tierSubstring(name string, values []string) []string {
	var out []string
	for _, v := range values {
		lower := strings.ToLower(v)
		if strings.Contains(lower, name) || strings.Contains(name, lower) {
			out = append(out, v)
		}
	}
	return out
}

// tierTokens splits the query into words and accepts a value containing
// any word longer than two characters. Catches questions like "how many
// arbitrations has Arbitrator Smith had", where the captured group
// carries words that are not part of the name.
func tierTokens(name string, values []string) []string {
	var out []string
	for _, v := range values {
		lower := strings.ToLower(v)
		for _, token := range strings.Fields(name) {
			if len(token) <= 2 {
				continue
			}
			if strings.Contains(lower, token) {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

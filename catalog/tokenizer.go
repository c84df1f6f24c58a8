// Package catalog keeps the denormalized availability count of each city in
// step with the property rows whose free text mentions it.
package catalog

import (
	"regexp"
	"strings"
)

var descriptionSeparator = regexp.MustCompile(`,\s*`)

// CandidateCities extracts the city names a property's text may refer to.
// Location details split on commas, the description on a comma followed by
// optional whitespace. Tokens are trimmed, empty ones dropped, and the union
// is deduplicated by exact string, location tokens first.
//
// The result only bounds which cities must be rechecked after a mutation;
// whether a property counts toward a city is decided by Mentions.
func CandidateCities(locationDetails, description string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(tokens []string) {
		for _, tok := range tokens {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}

	add(strings.Split(locationDetails, ","))
	if strings.TrimSpace(description) != "" {
		add(descriptionSeparator.Split(description, -1))
	}
	return out
}

// MergeCandidates unions several candidate lists keeping first-seen order.
func MergeCandidates(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, name := range list {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

package catalog

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
)

// Matcher resolves candidate names against managed cities inside one
// transaction scope. The text-based implementation matches names by trimmed,
// case-insensitive equality and counts properties by substring; a foreign-key
// backed implementation can replace it without touching callers.
type Matcher interface {
	// MatchCities returns the ids of cities whose name equals name under
	// NormalizeName, locking them for the rest of the transaction.
	MatchCities(ctx context.Context, name string) ([]int64, error)
	// CountMentions counts properties whose location details or description
	// contain name, ignoring case.
	CountMentions(ctx context.Context, name string) (int, error)
	// SetAvailability writes count to every listed city.
	SetAvailability(ctx context.Context, cityIDs []int64, count int) error
}

// NormalizeName is the comparison key for city names.
func NormalizeName(name string) string {
	// A Caser is stateful, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(name))
}

// SameCity reports whether two names refer to the same city.
func SameCity(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}

// Mentions reports whether text contains name as a case-insensitive substring.
// "Cityname East" mentions "Cityname".
func Mentions(text, name string) bool {
	needle := NormalizeName(name)
	if needle == "" {
		return false
	}
	return strings.Contains(cases.Fold().String(text), needle)
}

// PropertyMentions applies Mentions to both text fields of a property.
func PropertyMentions(locationDetails, description, name string) bool {
	return Mentions(locationDetails, name) || Mentions(description, name)
}

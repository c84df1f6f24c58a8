package catalog

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// Recalculator owns City.availableProperties: no other code writes it.
type Recalculator struct {
	logger logrus.FieldLogger
}

func NewRecalculator(logger logrus.FieldLogger) *Recalculator {
	return &Recalculator{logger: logger}
}

// Result reports what a recalculation pass touched.
type Result struct {
	Counts map[string]int
	Missed []string
}

// Recalculate recounts every candidate name and writes the count to the
// matching cities. Names with no managed city are skipped. It must run on the
// same transaction scope as the write that triggered it.
//
// Cities are locked in NormalizeName order so that concurrent mutations
// naming the same cities take their row locks in the same sequence.
func (r *Recalculator) Recalculate(ctx context.Context, m Matcher, names []string) (Result, error) {
	res := Result{Counts: make(map[string]int, len(names))}

	for _, name := range LockOrder(names) {
		ids, err := m.MatchCities(ctx, name)
		if err != nil {
			return res, fmt.Errorf("match city %q: %w", name, err)
		}
		if len(ids) == 0 {
			r.logger.WithField("candidate", name).Debug("No managed city for candidate, skipping")
			res.Missed = append(res.Missed, name)
			continue
		}

		count, err := m.CountMentions(ctx, name)
		if err != nil {
			return res, fmt.Errorf("count properties for %q: %w", name, err)
		}

		if err := m.SetAvailability(ctx, ids, count); err != nil {
			return res, fmt.Errorf("update availability for %q: %w", name, err)
		}
		res.Counts[name] = count
		r.logger.WithFields(logrus.Fields{
			"city":                name,
			"availableProperties": count,
		}).Debug("City availability recalculated")
	}
	return res, nil
}

// LockOrder returns a sorted copy of names, keyed by NormalizeName.
func LockOrder(names []string) []string {
	ordered := slices.Clone(names)
	slices.SortStableFunc(ordered, func(a, b string) int {
		return cmp.Or(cmp.Compare(NormalizeName(a), NormalizeName(b)), cmp.Compare(a, b))
	})
	return ordered
}

// RecalculateText recalculates the cities derived from one property's text.
func (r *Recalculator) RecalculateText(ctx context.Context, m Matcher, locationDetails, description string) (Result, error) {
	return r.Recalculate(ctx, m, CandidateCities(locationDetails, description))
}

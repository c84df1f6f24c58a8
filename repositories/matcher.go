package repositories

import (
	"context"

	"github.com/dcode-github/realestate_console/catalog"
)

// textMatcher joins properties to cities through free text: city rows by
// normalized name, properties by substring.
type textMatcher struct {
	store Store
}

// NewTextMatcher binds a catalog.Matcher to one transaction scope.
func NewTextMatcher(s Store) catalog.Matcher {
	return &textMatcher{store: s}
}

func (m *textMatcher) MatchCities(ctx context.Context, name string) ([]int64, error) {
	return m.store.Cities().LockByName(ctx, name)
}

func (m *textMatcher) CountMentions(ctx context.Context, name string) (int, error) {
	return m.store.Properties().CountMentioning(ctx, name)
}

func (m *textMatcher) SetAvailability(ctx context.Context, cityIDs []int64, count int) error {
	return m.store.Cities().SetAvailableProperties(ctx, cityIDs, count)
}

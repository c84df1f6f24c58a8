package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcode-github/realestate_console/imageset"
	"github.com/dcode-github/realestate_console/utils"
)

func TestCityCreateComputesInitialCount(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()

	_, err := f.properties.Create(ctx, house("Kochi, Aluva"), nil)
	require.NoError(t, err)
	_, err = f.properties.Create(ctx, house("kochi east"), nil)
	require.NoError(t, err)

	img := pngUpload(t, "kochi.png")
	city, err := f.cities.Create(ctx, "  Kochi ", &img)
	require.NoError(t, err)
	assert.Equal(t, "Kochi", city.CityName)
	assert.Equal(t, 2, city.AvailableProperties)
	assert.Equal(t, 2, f.availability(t, city.ID))
	assert.True(t, strings.HasPrefix(city.ImageURL, "uploads/cities/kochi-"))
	assert.True(t, f.fileExists(t, city.ImageURL))
}

func TestCityCreateValidation(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()
	img := pngUpload(t, "kochi.png")

	_, err := f.cities.Create(ctx, "Kochi", nil)
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)

	_, err = f.cities.Create(ctx, " ", &img)
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)

	_, err = f.cities.Create(ctx, "Kochi", &imageset.Upload{Name: "x.png", Data: []byte("text")})
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
	assert.Zero(t, f.storedFiles(t))
}

func TestCityCreateDuplicateRemovesImage(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()
	img := pngUpload(t, "kochi.png")

	_, err := f.cities.Create(ctx, "Kochi", &img)
	require.NoError(t, err)

	_, err = f.cities.Create(ctx, "KOCHI ", &img)
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)
	assert.Equal(t, 1, f.storedFiles(t))
}

func TestCityUpdateRenamesAndReplacesImage(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()

	_, err := f.properties.Create(ctx, house("Thrissur"), nil)
	require.NoError(t, err)

	img := pngUpload(t, "kochi.png")
	city, err := f.cities.Create(ctx, "Kochi", &img)
	require.NoError(t, err)
	require.Equal(t, 0, city.AvailableProperties)
	oldImage := city.ImageURL

	next := pngUpload(t, "thrissur.png")
	updated, err := f.cities.Update(ctx, city.ID, "Thrissur", &next)
	require.NoError(t, err)
	assert.Equal(t, "Thrissur", updated.CityName)
	assert.Equal(t, 1, updated.AvailableProperties)
	assert.Equal(t, 1, f.availability(t, city.ID))
	assert.False(t, f.fileExists(t, oldImage))
	assert.True(t, f.fileExists(t, updated.ImageURL))

	// Blank name keeps the current one.
	kept, err := f.cities.Update(ctx, city.ID, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Thrissur", kept.CityName)
	assert.Equal(t, updated.ImageURL, kept.ImageURL)
}

func TestCityUpdateMissing(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	img := pngUpload(t, "x.png")

	_, err := f.cities.Update(context.Background(), 7, "Kochi", &img)
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
	assert.Zero(t, f.storedFiles(t))
}

func TestCityDeleteRemovesImages(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()
	img := pngUpload(t, "c.png")

	a, err := f.cities.Create(ctx, "Kochi", &img)
	require.NoError(t, err)
	b, err := f.cities.Create(ctx, "Thrissur", &img)
	require.NoError(t, err)

	_, err = f.cities.Delete(ctx, nil)
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)

	n, err := f.cities.Delete(ctx, []int64{a.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.False(t, f.fileExists(t, a.ImageURL))
	assert.True(t, f.fileExists(t, b.ImageURL))

	count, err := f.cities.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecountAllIsIdempotent(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()
	kochi := f.seedCity(t, "Kochi")
	thrissur := f.seedCity(t, "Thrissur")

	_, err := f.properties.Create(ctx, house("Kochi"), nil)
	require.NoError(t, err)
	_, err = f.properties.Create(ctx, house("Kochi, Thrissur"), nil)
	require.NoError(t, err)

	require.NoError(t, f.db.Store().Cities().SetAvailableProperties(ctx, []int64{kochi.ID, thrissur.ID}, 99))

	first, err := f.cities.RecountAll(ctx)
	require.NoError(t, err)
	second, err := f.cities.RecountAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"Kochi": 2, "Thrissur": 1}, first.Counts)
	assert.Equal(t, first.Counts, second.Counts)
	assert.Equal(t, 2, f.availability(t, kochi.ID))
	assert.Equal(t, 1, f.availability(t, thrissur.ID))
}

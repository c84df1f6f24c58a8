package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcode-github/realestate_console/catalog"
	"github.com/dcode-github/realestate_console/imageset"
	"github.com/dcode-github/realestate_console/models"
	"github.com/dcode-github/realestate_console/repositories/memstore"
	"github.com/dcode-github/realestate_console/storage"
	"github.com/dcode-github/realestate_console/utils"
)

type fixture struct {
	db         *memstore.DB
	uploads    *storage.Uploads
	root       string
	properties *PropertyService
	cities     *CityService
}

func newFixture(t *testing.T, opts PropertyServiceOptions) *fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	db := memstore.New()
	root := t.TempDir()
	uploads := storage.NewUploads(root, logger)
	recalc := catalog.NewRecalculator(logger)
	if opts.Compress == (imageset.CompressOptions{}) {
		opts.Compress = imageset.DefaultCompressOptions
	}
	return &fixture{
		db:         db,
		uploads:    uploads,
		root:       root,
		properties: NewPropertyService(db, uploads, recalc, utils.NewValidator(), opts, logger),
		cities:     NewCityService(db, uploads, recalc, opts.Compress, logger),
	}
}

func (f *fixture) seedCity(t *testing.T, name string) *models.City {
	t.Helper()
	c := &models.City{CityName: name, ImageURL: "uploads/cities/" + name + ".jpg"}
	require.NoError(t, f.db.Store().Cities().Create(context.Background(), c))
	return c
}

func (f *fixture) availability(t *testing.T, id int64) int {
	t.Helper()
	c, err := f.db.Store().Cities().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c.AvailableProperties
}

func (f *fixture) propertyCount(t *testing.T) int {
	t.Helper()
	n, err := f.db.Store().Properties().Count(context.Background())
	require.NoError(t, err)
	return n
}

func (f *fixture) storedFiles(t *testing.T) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(f.root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func (f *fixture) fileExists(t *testing.T, url string) bool {
	t.Helper()
	fp, err := f.uploads.FilePath(url)
	require.NoError(t, err)
	_, err = os.Stat(fp)
	return err == nil
}

func pngUpload(t *testing.T, name string) imageset.Upload {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return imageset.Upload{Name: name, Data: buf.Bytes()}
}

func pngUploads(t *testing.T, n int) []imageset.Upload {
	out := make([]imageset.Upload, n)
	for i := range out {
		out[i] = pngUpload(t, "photo.png")
	}
	return out
}

func house(location string) PropertyInput {
	return PropertyInput{
		PropertyType:    "House",
		FullName:        "Anu Joseph",
		PhoneNumber:     "9876543210",
		LocationDetails: location,
		PlotSize:        "12 Cent",
		Budget:          "45 Lakhs",
	}
}

func requireAppError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, status, appErr.StatusCode)
	assert.Equal(t, code, appErr.Code)
}

func TestCreateRecalculatesMentionedCities(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()
	springfield := f.seedCity(t, "Springfield")
	riverside := f.seedCity(t, "Riverside")
	other := f.seedCity(t, "Shelbyville")

	p, err := f.properties.Create(ctx, house("Springfield, Riverside"), nil)
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, 1, f.availability(t, springfield.ID))
	assert.Equal(t, 1, f.availability(t, riverside.ID))
	assert.Equal(t, 0, f.availability(t, other.ID))

	in := house("Springfield")
	in.Description = "Quiet street,near Riverside bridge"
	_, err = f.properties.Create(ctx, in, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, f.availability(t, springfield.ID))
	// "near Riverside bridge" is not a city token, so Riverside is not rechecked.
	assert.Equal(t, 1, f.availability(t, riverside.ID))

	_, err = f.properties.Create(ctx, house("Riverside"), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, f.availability(t, riverside.ID))
}

func TestCreateMatchesCityIgnoringCaseAndSpace(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	city := f.seedCity(t, "bangalore ")

	_, err := f.properties.Create(context.Background(), house("Bangalore"), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.availability(t, city.ID))
}

func TestCreateLandWithoutDescriptionWritesNothing(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	city := f.seedCity(t, "Kochi")
	f.db.FailOn("cities.LockByName", errors.New("recalculation must not run"))

	in := house("Kochi")
	in.PropertyType = "Land"
	_, err := f.properties.Create(context.Background(), in, []imageset.Upload{pngUpload(t, "plot.png")})

	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
	assert.ErrorIs(t, err, utils.ErrValidation)
	assert.Zero(t, f.propertyCount(t))
	assert.Zero(t, f.storedFiles(t))
	assert.Equal(t, 0, f.availability(t, city.ID))
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()

	cases := map[string]func(*PropertyInput){
		"missing type":     func(in *PropertyInput) { in.PropertyType = "" },
		"unknown type":     func(in *PropertyInput) { in.PropertyType = "Castle" },
		"short phone":      func(in *PropertyInput) { in.PhoneNumber = "12345" },
		"blank location":   func(in *PropertyInput) { in.LocationDetails = "   " },
		"missing plot":     func(in *PropertyInput) { in.PlotSize = "" },
		"missing budget":   func(in *PropertyInput) { in.Budget = "" },
		"missing holder":   func(in *PropertyInput) { in.FullName = "" },
		"bad rental type":  func(in *PropertyInput) { in.RentalType = "Castle" },
		"negative toilets": func(in *PropertyInput) { n := -1; in.NumOfToilets = &n },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := house("Kochi")
			mutate(&in)
			_, err := f.properties.Create(ctx, in, nil)
			requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
		})
	}
	assert.Zero(t, f.propertyCount(t))
}

func TestCreateAcceptsFarmLand(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	in := house("Thrissur")
	in.PropertyType = "Farm Land"

	p, err := f.properties.Create(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyTypeFarmLand, p.PropertyType)
	assert.Equal(t, []string{}, p.ImageURLs)
}

func TestCreateRejectsTooManyImages(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})

	_, err := f.properties.Create(context.Background(), house("Kochi"), pngUploads(t, 7))
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeQuotaExceeded)
	assert.ErrorIs(t, err, utils.ErrQuotaExceeded)
	assert.Zero(t, f.propertyCount(t))
	assert.Zero(t, f.storedFiles(t))
}

func TestCreateRollsBackWhenRecalculationFails(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	city := f.seedCity(t, "Kochi")
	f.db.FailOn("properties.CountMentioning", errors.New("database unavailable"))

	_, err := f.properties.Create(context.Background(), house("Kochi"), pngUploads(t, 2))
	requireAppError(t, err, http.StatusInternalServerError, utils.ErrCodeInternal)

	f.db.FailOn("properties.CountMentioning", nil)
	assert.Zero(t, f.propertyCount(t))
	assert.Equal(t, 0, f.availability(t, city.ID))
	assert.Zero(t, f.storedFiles(t))
}

func TestCreateRejectsNonImageUploads(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})

	_, err := f.properties.Create(context.Background(), house("Kochi"),
		[]imageset.Upload{pngUpload(t, "a.png"), {Name: "b.png", Data: []byte("not an image")}})
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
	assert.Zero(t, f.propertyCount(t))
	assert.Zero(t, f.storedFiles(t))
}

func TestUpdateMergesImageSet(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()

	created, err := f.properties.Create(ctx, house("Kochi"), pngUploads(t, 2))
	require.NoError(t, err)
	require.Len(t, created.ImageURLs, 2)
	a, b := created.ImageURLs[0], created.ImageURLs[1]

	updated, err := f.properties.Update(ctx, created.ID, house("Kochi"), []string{"/" + a}, []imageset.Upload{pngUpload(t, "c.png")})
	require.NoError(t, err)
	require.Len(t, updated.ImageURLs, 2)
	assert.Equal(t, b, updated.ImageURLs[0])
	assert.Contains(t, updated.ImageURLs[1], "uploads/properties/c-")

	assert.False(t, f.fileExists(t, a))
	assert.True(t, f.fileExists(t, b))
	assert.True(t, f.fileExists(t, updated.ImageURLs[1]))

	stored, err := f.properties.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.ImageURLs, stored.ImageURLs)
}

func TestUpdateRejectsQuotaBeforeWriting(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()

	created, err := f.properties.Create(ctx, house("Kochi"), pngUploads(t, 5))
	require.NoError(t, err)

	in := house("Kochi, Ernakulam")
	_, err = f.properties.Update(ctx, created.ID, in, nil, pngUploads(t, 2))
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeQuotaExceeded)

	stored, err := f.properties.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kochi", stored.LocationDetails)
	assert.Equal(t, created.ImageURLs, stored.ImageURLs)
	assert.Equal(t, 5, f.storedFiles(t))

	// Dropping one image frees a slot for exactly one more.
	_, err = f.properties.Update(ctx, created.ID, in, created.ImageURLs[:1], pngUploads(t, 2))
	require.NoError(t, err)
}

func TestUpdateMissingProperty(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})

	_, err := f.properties.Update(context.Background(), 42, house("Kochi"), nil, nil)
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
}

func TestUpdateRecalculatesNewCities(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()
	kochi := f.seedCity(t, "Kochi")
	thrissur := f.seedCity(t, "Thrissur")

	p, err := f.properties.Create(ctx, house("Kochi"), nil)
	require.NoError(t, err)
	require.Equal(t, 1, f.availability(t, kochi.ID))

	_, err = f.properties.Update(ctx, p.ID, house("Thrissur"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.availability(t, thrissur.ID))
	// The previous city is not rechecked by default.
	assert.Equal(t, 1, f.availability(t, kochi.ID))
}

func TestUpdateRecalculatesPreviousCitiesWhenEnabled(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{RecalcPreviousCities: true})
	ctx := context.Background()
	kochi := f.seedCity(t, "Kochi")
	thrissur := f.seedCity(t, "Thrissur")

	p, err := f.properties.Create(ctx, house("Kochi"), nil)
	require.NoError(t, err)

	_, err = f.properties.Update(ctx, p.ID, house("Thrissur"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.availability(t, thrissur.ID))
	assert.Equal(t, 0, f.availability(t, kochi.ID))
}

func TestUpdateRollbackRemovesNewFiles(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()
	f.seedCity(t, "Thrissur")

	created, err := f.properties.Create(ctx, house("Kochi"), pngUploads(t, 1))
	require.NoError(t, err)

	f.db.FailOn("cities.SetAvailableProperties", errors.New("lock timeout"))
	_, err = f.properties.Update(ctx, created.ID, house("Thrissur"), created.ImageURLs, pngUploads(t, 2))
	requireAppError(t, err, http.StatusInternalServerError, utils.ErrCodeInternal)
	f.db.FailOn("cities.SetAvailableProperties", nil)

	stored, err := f.properties.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kochi", stored.LocationDetails)
	assert.Equal(t, created.ImageURLs, stored.ImageURLs)
	assert.Equal(t, 1, f.storedFiles(t))
	assert.True(t, f.fileExists(t, created.ImageURLs[0]))
}

func TestDeleteBatch(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()
	kochi := f.seedCity(t, "Kochi")
	thrissur := f.seedCity(t, "Thrissur")

	p1, err := f.properties.Create(ctx, house("Kochi"), pngUploads(t, 2))
	require.NoError(t, err)
	p2, err := f.properties.Create(ctx, house("Kochi, Thrissur"), pngUploads(t, 1))
	require.NoError(t, err)
	p3, err := f.properties.Create(ctx, house("Thrissur"), pngUploads(t, 1))
	require.NoError(t, err)
	require.Equal(t, 2, f.availability(t, kochi.ID))
	require.Equal(t, 2, f.availability(t, thrissur.ID))

	// A missing file is skipped without aborting the delete.
	require.NoError(t, f.uploads.Remove(p1.ImageURLs[1]))

	res, err := f.properties.Delete(ctx, []int64{p1.ID, p2.ID, 999})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Deleted)
	assert.Equal(t, 2, res.FilesRemoved)
	assert.Equal(t, map[string]int{"Kochi": 0, "Thrissur": 1}, res.Cities)

	assert.Equal(t, 0, f.availability(t, kochi.ID))
	assert.Equal(t, 1, f.availability(t, thrissur.ID))
	assert.Equal(t, 1, f.propertyCount(t))
	assert.Equal(t, 1, f.storedFiles(t))
	assert.True(t, f.fileExists(t, p3.ImageURLs[0]))
}

func TestDeleteRequiresIDs(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})

	_, err := f.properties.Delete(context.Background(), nil)
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
}

func TestDeleteRollbackKeepsRowsButNotFiles(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()
	kochi := f.seedCity(t, "Kochi")

	p, err := f.properties.Create(ctx, house("Kochi"), pngUploads(t, 1))
	require.NoError(t, err)

	f.db.FailOn("properties.DeleteByIDs", errors.New("database unavailable"))
	_, err = f.properties.Delete(ctx, []int64{p.ID})
	requireAppError(t, err, http.StatusInternalServerError, utils.ErrCodeInternal)
	f.db.FailOn("properties.DeleteByIDs", nil)

	assert.Equal(t, 1, f.propertyCount(t))
	assert.Equal(t, 1, f.availability(t, kochi.ID))
	assert.Zero(t, f.storedFiles(t))
}

func TestListByCityUsesSubstringMatch(t *testing.T) {
	f := newFixture(t, PropertyServiceOptions{})
	ctx := context.Background()

	_, err := f.properties.Create(ctx, house("Kochi East"), nil)
	require.NoError(t, err)
	in := house("Aluva")
	in.Description = "Twenty minutes from kochi"
	_, err = f.properties.Create(ctx, in, nil)
	require.NoError(t, err)
	_, err = f.properties.Create(ctx, house("Thrissur"), nil)
	require.NoError(t, err)

	props, err := f.properties.ListByCity(ctx, "Kochi")
	require.NoError(t, err)
	assert.Len(t, props, 2)

	n, err := f.properties.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDroppedImages(t *testing.T) {
	before := []string{"uploads/properties/a.jpg", `uploads\properties\b.jpg`, "uploads/properties/a.jpg"}
	after := []string{"uploads/properties/b.jpg", "uploads/properties/c.jpg"}
	assert.Equal(t, []string{"uploads/properties/a.jpg"}, droppedImages(before, after))
}

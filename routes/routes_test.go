package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcode-github/realestate_console/cache"
	"github.com/dcode-github/realestate_console/catalog"
	"github.com/dcode-github/realestate_console/controllers"
	"github.com/dcode-github/realestate_console/imageset"
	"github.com/dcode-github/realestate_console/models"
	"github.com/dcode-github/realestate_console/repositories/memstore"
	"github.com/dcode-github/realestate_console/services"
	"github.com/dcode-github/realestate_console/storage"
	"github.com/dcode-github/realestate_console/utils"
)

func TestMain(m *testing.M) {
	utils.Logger.SetOutput(io.Discard)
	utils.SetJWTKey("routes-test-key")
	os.Exit(m.Run())
}

type testApp struct {
	router *mux.Router
	db     *memstore.DB
	root   string
}

func newTestApp(t *testing.T, requireAuth bool) *testApp {
	t.Helper()
	logger, _ := test.NewNullLogger()
	db := memstore.New()
	root := t.TempDir()
	uploads := storage.NewUploads(root, logger)
	recalc := catalog.NewRecalculator(logger)
	validate := utils.NewValidator()
	opts := imageset.DefaultCompressOptions

	router := mux.NewRouter()
	Routes(router, Deps{
		Properties: services.NewPropertyService(db, uploads, recalc, validate, services.PropertyServiceOptions{Compress: opts}, logger),
		Cities:     services.NewCityService(db, uploads, recalc, opts, logger),
		Leads:      services.NewLeadService(db.Enquiries(), db.VisitSchedules(), db.SellingInfo(), uploads, opts, validate, logger),
		Auth:       services.NewAuthService(db.Users(), logger),
		Contact:    services.NewContactService(nil, "", "", validate, logger),
		Cache:      controllers.ReadCache{Store: cache.NewMemoryCache(time.Minute), TTL: time.Minute},
		UploadDir:  root,

		RequireAuth: requireAuth,
	})
	return &testApp{router: router, db: db, root: root}
}

func (a *testApp) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) seedCity(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, a.db.Store().Cities().Create(context.Background(), &models.City{CityName: name}))
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, method, target string, fields [][2]string, files []formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range fields {
		require.NoError(t, mw.WriteField(f[0], f[1]))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func pngFile(t *testing.T, name string) formFile {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 3))))
	return formFile{field: "files", name: name, data: buf.Bytes()}
}

func propertyFields(propertyType, location, description string) [][2]string {
	return [][2]string{
		{"propertyType", propertyType},
		{"fullName", "Anu Joseph"},
		{"phoneNumber", "9876543210"},
		{"numOfRooms", "3"},
		{"locationDetails", location},
		{"description", description},
		{"plotSize", "12 Cent"},
		{"budget", "45 Lakhs"},
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func cityCounts(t *testing.T, a *testApp) map[string]int {
	t.Helper()
	rec := a.do(t, httptest.NewRequest(http.MethodGet, "/cities", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	counts := map[string]int{}
	for _, c := range decode[[]models.City](t, rec) {
		counts[c.CityName] = c.AvailableProperties
	}
	return counts
}

func TestCreatePropertyUpdatesCityCounts(t *testing.T) {
	a := newTestApp(t, false)
	a.seedCity(t, "Springfield")
	a.seedCity(t, "Riverside")

	// Prime the cache so the write must invalidate it.
	assert.Equal(t, map[string]int{"Springfield": 0, "Riverside": 0}, cityCounts(t, a))

	rec := a.do(t, multipartRequest(t, http.MethodPost, "/properties",
		propertyFields("House", "Springfield, Riverside", ""),
		[]formFile{pngFile(t, "front.png"), pngFile(t, "back.png")}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	p := decode[models.Property](t, rec)
	assert.Len(t, p.ImageURLs, 2)
	require.NotNil(t, p.NumOfRooms)
	assert.Equal(t, 3, *p.NumOfRooms)

	assert.Equal(t, map[string]int{"Springfield": 1, "Riverside": 1}, cityCounts(t, a))

	// Stored URLs resolve under /uploads/.
	img := a.do(t, httptest.NewRequest(http.MethodGet, "/"+p.ImageURLs[0], nil))
	assert.Equal(t, http.StatusOK, img.Code)
}

func TestCreateLandWithoutDescriptionIsRejected(t *testing.T) {
	a := newTestApp(t, false)

	rec := a.do(t, multipartRequest(t, http.MethodPost, "/properties", propertyFields("Land", "Kochi", ""), nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[utils.ErrorResponse](t, rec)
	assert.Equal(t, utils.ErrCodeValidation, body.Code)

	count := a.do(t, httptest.NewRequest(http.MethodGet, "/properties/count", nil))
	assert.Equal(t, 0, decode[utils.CountResponse](t, count).Count)
}

func TestCreatePropertyRejectsBadRoomCount(t *testing.T) {
	a := newTestApp(t, false)
	fields := append(propertyFields("House", "Kochi", ""), [2]string{"numOfToilets", "two"})

	rec := a.do(t, multipartRequest(t, http.MethodPost, "/properties", fields, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePropertyMergesImages(t *testing.T) {
	a := newTestApp(t, false)

	rec := a.do(t, multipartRequest(t, http.MethodPost, "/properties",
		propertyFields("Villa", "Kochi", ""), []formFile{pngFile(t, "a.png"), pngFile(t, "b.png")}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Property](t, rec)

	removed, err := json.Marshal([]string{created.ImageURLs[0]})
	require.NoError(t, err)
	fields := append(propertyFields("Villa", "Kochi", ""), [2]string{"removedImages", string(removed)})

	rec = a.do(t, multipartRequest(t, http.MethodPut, "/properties/"+itoa(created.ID), fields, []formFile{pngFile(t, "c.png")}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Property](t, rec)

	require.Len(t, updated.ImageURLs, 2)
	assert.Equal(t, created.ImageURLs[1], updated.ImageURLs[0])
	assert.True(t, strings.HasPrefix(updated.ImageURLs[1], "uploads/properties/c-"))

	gone := a.do(t, httptest.NewRequest(http.MethodGet, "/"+created.ImageURLs[0], nil))
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestUpdatePropertyQuotaExceeded(t *testing.T) {
	a := newTestApp(t, false)

	files := make([]formFile, 5)
	for i := range files {
		files[i] = pngFile(t, "p.png")
	}
	rec := a.do(t, multipartRequest(t, http.MethodPost, "/properties", propertyFields("House", "Kochi", ""), files))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Property](t, rec)

	rec = a.do(t, multipartRequest(t, http.MethodPut, "/properties/"+itoa(created.ID),
		propertyFields("House", "Kochi", ""), []formFile{pngFile(t, "x.png"), pngFile(t, "y.png")}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.ErrCodeQuotaExceeded, decode[utils.ErrorResponse](t, rec).Code)
}

func TestUpdateMissingPropertyReturnsNotFound(t *testing.T) {
	a := newTestApp(t, false)

	rec := a.do(t, jsonRequest(t, http.MethodPut, "/properties/99", map[string]any{
		"propertyType": "House", "fullName": "Anu", "phoneNumber": "9876543210",
		"locationDetails": "Kochi", "plotSize": "10 Cent", "budget": "20 Lakhs",
	}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProperties(t *testing.T) {
	a := newTestApp(t, false)
	a.seedCity(t, "Kochi")

	rec := a.do(t, multipartRequest(t, http.MethodPost, "/properties", propertyFields("House", "Kochi", ""), nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Property](t, rec)
	require.Equal(t, 1, cityCounts(t, a)["Kochi"])

	rec = a.do(t, jsonRequest(t, http.MethodDelete, "/properties", map[string]any{"ids": []int64{}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.do(t, jsonRequest(t, http.MethodDelete, "/properties", map[string]any{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, jsonRequest(t, http.MethodDelete, "/properties", map[string]any{"ids": []int64{created.ID}}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, cityCounts(t, a)["Kochi"])
}

func TestPropertiesByCity(t *testing.T) {
	a := newTestApp(t, false)
	for _, loc := range []string{"Kochi East", "Thrissur", "kochi"} {
		rec := a.do(t, multipartRequest(t, http.MethodPost, "/properties", propertyFields("House", loc, ""), nil))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := a.do(t, httptest.NewRequest(http.MethodGet, "/properties/city/Kochi", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Property](t, rec), 2)

	rec = a.do(t, httptest.NewRequest(http.MethodGet, "/properties", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Property](t, rec), 3)
}

func TestCityEndpoints(t *testing.T) {
	a := newTestApp(t, false)

	rec := a.do(t, multipartRequest(t, http.MethodPost, "/cities", [][2]string{{"cityName", "Kochi"}}, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	file := pngFile(t, "kochi.png")
	file.field = "file"
	rec = a.do(t, multipartRequest(t, http.MethodPost, "/cities", [][2]string{{"cityName", "Kochi"}}, []formFile{file}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	city := decode[models.City](t, rec)

	rec = a.do(t, multipartRequest(t, http.MethodPost, "/cities", [][2]string{{"cityName", " kochi"}}, []formFile{file}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, multipartRequest(t, http.MethodPut, "/cities/"+itoa(city.ID), [][2]string{{"cityName", "Ernakulam"}}, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Ernakulam", decode[models.City](t, rec).CityName)

	rec = a.do(t, httptest.NewRequest(http.MethodGet, "/cities/count", nil))
	assert.Equal(t, 1, decode[utils.CountResponse](t, rec).Count)

	rec = a.do(t, jsonRequest(t, http.MethodDelete, "/cities", map[string]any{"ids": []int64{city.ID}}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, cityCounts(t, a))
}

func TestLeadEndpoints(t *testing.T) {
	a := newTestApp(t, false)

	rec := a.do(t, jsonRequest(t, http.MethodPost, "/enquiries", map[string]any{
		"fullName": "Rahul", "phoneNumber": "9876543210", "propertyType": "Villa",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, jsonRequest(t, http.MethodPost, "/enquiries", map[string]any{"fullName": "Rahul"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, jsonRequest(t, http.MethodPost, "/schedule-visit", map[string]any{
		"fullName": "Meera", "phoneNumber": "9876543210", "visitDate": "2026-11-02", "visitTime": "10:30",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, multipartRequest(t, http.MethodPost, "/selling-info", [][2]string{
		{"fullName", "Joseph"}, {"phoneNumber", "9876543210"}, {"propertyType", "Land"},
	}, []formFile{pngFile(t, "plot.png")}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	info := decode[models.SellingInfo](t, rec)
	require.Len(t, info.ImageURLs, 1)

	for path, want := range map[string]int{"/enquiries/count": 1, "/schedules/count": 1, "/selling-info/count": 1} {
		rec = a.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, decode[utils.CountResponse](t, rec).Count, path)
	}

	rec = a.do(t, jsonRequest(t, http.MethodDelete, "/selling-info", map[string]any{"ids": []int64{info.ID}}))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, httptest.NewRequest(http.MethodGet, "/"+info.ImageURLs[0], nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactWithoutMailerFails(t *testing.T) {
	a := newTestApp(t, false)

	rec := a.do(t, jsonRequest(t, http.MethodPost, "/contact", map[string]any{
		"fname": "Asha", "phone": "9876543210", "email": "asha@example.com", "message": "Hi",
	}))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	a := newTestApp(t, true)
	ctx := context.Background()
	auth := services.NewAuthService(a.db.Users(), utils.Logger)
	_, err := auth.CreateUser(ctx, "admin", "s3cret", "")
	require.NoError(t, err)

	rec := a.do(t, multipartRequest(t, http.MethodPost, "/properties", propertyFields("House", "Kochi", ""), nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Public reads stay open.
	rec = a.do(t, httptest.NewRequest(http.MethodGet, "/properties", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, jsonRequest(t, http.MethodPost, "/api/login", map[string]string{"username": "admin", "password": "wrong"}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, jsonRequest(t, http.MethodPost, "/api/login", map[string]string{"username": "admin", "password": "s3cret"}))
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[controllers.LoginResponse](t, rec)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "admin", login.User.Username)
	assert.Empty(t, login.User.Password)

	req := multipartRequest(t, http.MethodPost, "/properties", propertyFields("House", "Kochi", ""), nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = a.do(t, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

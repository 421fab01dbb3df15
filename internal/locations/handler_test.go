package locations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	provinces map[int][]Province
	err       error
}

func (s stubRepo) Regions(context.Context) ([]Region, error) {
	return []Region{{RegionID: 3, Name: "Central Luzon"}, {RegionID: 13, Name: "NCR"}}, s.err
}

func (s stubRepo) Provinces(_ context.Context, regionID int) ([]Province, error) {
	return s.provinces[regionID], s.err
}

func (s stubRepo) Municipalities(context.Context, int) ([]Municipality, error) {
	return []Municipality{}, s.err
}

func (s stubRepo) Barangays(context.Context, int) ([]Barangay, error) {
	return []Barangay{}, s.err
}

func newRouter(repo Repository) chi.Router {
	r := chi.NewRouter()
	r.Route("/api/locations", NewHandler(nil, repo).MountRoutes)
	return r
}

func TestProvincesByRegion(t *testing.T) {
	repo := stubRepo{provinces: map[int][]Province{3: {{ProvinceID: 308, RegionID: 3, Name: "Bataan"}}}}
	res := httptest.NewRecorder()
	newRouter(repo).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/locations/provinces/3", nil))

	require.Equal(t, http.StatusOK, res.Code)
	var got []Province
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Bataan", got[0].Name)
}

func TestInvalidCodes(t *testing.T) {
	cases := map[string]string{
		"/api/locations/provinces/abc":     "Invalid Region Code",
		"/api/locations/municipalities/x1": "Invalid Province Code",
		"/api/locations/barangays/nope":    "Invalid City Code",
	}
	router := newRouter(stubRepo{})
	for path, title := range cases {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, res.Code, path)
		assert.Equal(t, "application/problem+json", res.Header().Get("Content-Type"), path)
		assert.Contains(t, res.Body.String(), title, path)
	}
}

func TestRepositoryFailure(t *testing.T) {
	res := httptest.NewRecorder()
	newRouter(stubRepo{err: errors.New("db down")}).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/locations/regions", nil))
	assert.Equal(t, http.StatusInternalServerError, res.Code)
}

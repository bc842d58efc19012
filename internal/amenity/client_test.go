package amenity

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentfair/server/internal/apperrors"
	"rentfair/server/internal/models"
)

var origin = models.GeoPoint{Latitude: 47.3769, Longitude: 8.5417}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func newTestClient(serverURL string, timeout time.Duration) *Client {
	return NewClient(testLogger(), Options{BaseURL: serverURL, Timeout: timeout})
}

func TestBuildQuery(t *testing.T) {
	query := buildQuery(models.CategorySupermarket, origin, 500)

	assert.Contains(t, query, "[out:json];")
	assert.Contains(t, query, `node["shop"="supermarket"](around:500,47.376900,8.541700);`)
	assert.Contains(t, query, `way["shop"="supermarket"]`)
	assert.Contains(t, query, `relation["shop"="supermarket"]`)
	assert.Contains(t, query, "out center;")
}

func TestBuildQueryFallbackCategory(t *testing.T) {
	query := buildQuery(models.ParseCategory("Cinema"), origin, 300)
	assert.Contains(t, query, `node["amenity"="cinema"]`)
}

func TestFetchCentroidPolicy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"amenity"="pharmacy"`)
		w.Write([]byte(`{"elements": [
			{"type": "node", "lat": 47.377, "lon": 8.542, "tags": {"name": "Apotheke am See"}},
			{"type": "way", "center": {"lat": 47.378, "lon": 8.543}, "tags": {"name": "Bahnhof Apotheke"}},
			{"type": "relation", "tags": {"name": "No Coordinates"}}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2*time.Second)
	candidates, err := client.Fetch(context.Background(), models.CategoryPharmacy, origin, 500)
	require.NoError(t, err)
	require.Len(t, candidates, 2, "elements lacking both coordinate kinds are discarded")

	assert.Equal(t, models.SourcePoint, candidates[0].Source)
	assert.Equal(t, "Apotheke am See", candidates[0].Name)
	assert.Equal(t, models.SourceCentroid, candidates[1].Source)
	assert.Equal(t, 47.378, candidates[1].Point.Latitude)
}

func TestFetchZeroCoordinateIsPresent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements": [
			{"type": "node", "lat": 0, "lon": 8.542, "tags": {"name": "Equator"}},
			{"type": "node", "lon": 8.542, "tags": {"name": "Missing Lat"}}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2*time.Second)
	candidates, err := client.Fetch(context.Background(), models.CategorySchool, origin, 500)
	require.NoError(t, err)

	// A literal 0 is a coordinate; an absent field is not.
	require.Len(t, candidates, 1)
	assert.Equal(t, "Equator", candidates[0].Name)
	assert.Equal(t, 0.0, candidates[0].Point.Latitude)
}

func TestFetchTimeoutDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"elements": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 20*time.Millisecond)
	candidates, err := client.Fetch(context.Background(), models.CategorySchool, origin, 500)

	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
	assert.Empty(t, candidates)
}

func TestFetchMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>rate limited</html>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2*time.Second)
	_, err := client.Fetch(context.Background(), models.CategorySchool, origin, 500)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache()

	_, ok := cache.Get(models.CategorySchool, origin, 500)
	assert.False(t, ok)

	candidates := []models.AmenityCandidate{{Category: models.CategorySchool, Name: "Primarschule"}}
	cache.Put(models.CategorySchool, origin, 500, candidates)

	got, ok := cache.Get(models.CategorySchool, origin, 500)
	require.True(t, ok)
	assert.Equal(t, candidates, got)

	// Different radius is a different key.
	_, ok = cache.Get(models.CategorySchool, origin, 1000)
	assert.False(t, ok)
}

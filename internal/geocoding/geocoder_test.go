package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentfair/server/internal/apperrors"
	"rentfair/server/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func testAddress() models.Address {
	return models.Address{
		Street:      "Bahnhofstrasse",
		HouseNumber: "12",
		PostalCode:  "8001",
		City:        "Zurich",
	}
}

func newTestGeocoder(t *testing.T, serverURL string) *Geocoder {
	t.Helper()
	return NewGeocoder(testLogger(), t.TempDir(), Options{
		BaseURL:     serverURL,
		Timeout:     2 * time.Second,
		MinInterval: time.Millisecond,
	})
}

func TestResolveFreeText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		w.Write([]byte(`[{"lat": "47.3769", "lon": "8.5417"}]`))
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL)
	point, err := g.Resolve(context.Background(), testAddress())
	require.NoError(t, err)
	assert.Equal(t, 47.3769, point.Latitude)
	assert.Equal(t, 8.5417, point.Longitude)
}

func TestResolvePostalCodeFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "" {
			// Full-text lookup finds nothing.
			w.Write([]byte(`[]`))
			return
		}
		assert.Equal(t, "8001", r.URL.Query().Get("postalcode"))
		w.Write([]byte(`[{"lat": "47.3686", "lon": "8.5392"}]`))
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL)
	point, err := g.Resolve(context.Background(), testAddress())
	require.NoError(t, err)
	assert.Equal(t, 47.3686, point.Latitude)
}

func TestResolveNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL)
	_, err := g.Resolve(context.Background(), testAddress())
	assert.ErrorIs(t, err, apperrors.ErrLocationNotFound)
}

func TestResolveInvalidPostalCode(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL)
	address := testAddress()
	address.PostalCode = "80"

	_, err := g.Resolve(context.Background(), address)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Zero(t, atomic.LoadInt32(&calls), "validation errors must never reach the network")
}

func TestResolveUsesCache(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`[{"lat": "47.3769", "lon": "8.5417"}]`))
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL)
	ctx := context.Background()

	_, err := g.Resolve(ctx, testAddress())
	require.NoError(t, err)
	_, err = g.Resolve(ctx, testAddress())
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResolveUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL)
	_, err := g.Resolve(context.Background(), testAddress())
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestResolveRejectsOutOfCountryResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Berlin, well outside the Swiss bounding box.
		w.Write([]byte(`[{"lat": "52.5200", "lon": "13.4050"}]`))
	}))
	defer server.Close()

	g := newTestGeocoder(t, server.URL)
	_, err := g.Resolve(context.Background(), testAddress())
	assert.ErrorIs(t, err, apperrors.ErrLocationNotFound)
}

func TestRateLimiterSpacesRequests(t *testing.T) {
	limiter := &rateLimiter{interval: 30 * time.Millisecond}

	start := time.Now()
	limiter.wait()
	limiter.wait()
	limiter.wait()

	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rentfair/server/internal/apperrors"
	"rentfair/server/internal/models"
)

// userAgent identifies the client on every request, required by the
// Nominatim usage policy.
const userAgent = "RentFair Rental Price Evaluator/1.0"

// Options configure the geocoder. Zero values fall back to the public
// Nominatim endpoint with policy-compliant spacing.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	MinInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = "https://nominatim.openstreetmap.org/search"
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.MinInterval <= 0 {
		o.MinInterval = time.Second
	}
	return o
}

// Geocoder resolves postal addresses to coordinates. Lookups are cached by
// the exact input tuple (in memory, persisted to disk) and spaced out by a
// limiter shared across all callers, so concurrent amenity fetches cannot
// hammer the upstream.
type Geocoder struct {
	logger    *logrus.Logger
	opts      Options
	cacheDir  string
	cache     map[string]models.GeoPoint
	cacheLock sync.RWMutex
	limiter   *rateLimiter
	client    *http.Client
}

func NewGeocoder(logger *logrus.Logger, cacheDir string, opts Options) *Geocoder {
	opts = opts.withDefaults()

	// Create cache directory if it doesn't exist
	os.MkdirAll(cacheDir, 0755)

	g := &Geocoder{
		logger:   logger,
		opts:     opts,
		cacheDir: cacheDir,
		cache:    make(map[string]models.GeoPoint),
		limiter:  &rateLimiter{interval: opts.MinInterval},
		client:   &http.Client{Timeout: opts.Timeout},
	}

	g.loadCache()

	return g
}

// rateLimiter enforces a minimum spacing between upstream requests.
type rateLimiter struct {
	mu       sync.Mutex
	last     time.Time
	interval time.Duration
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sleep := r.interval - time.Since(r.last); sleep > 0 {
		time.Sleep(sleep)
	}
	r.last = time.Now()
}

func (g *Geocoder) loadCache() {
	cacheFile := filepath.Join(g.cacheDir, "geocode_cache.json")
	data, err := os.ReadFile(cacheFile)
	if err != nil {
		return
	}

	if err := json.Unmarshal(data, &g.cache); err != nil {
		g.logger.WithError(err).Error("Failed to parse geocode cache")
		return
	}

	g.logger.Infof("Loaded %d cached addresses", len(g.cache))
}

func (g *Geocoder) saveCache() {
	g.cacheLock.RLock()
	data, err := json.Marshal(g.cache)
	g.cacheLock.RUnlock()
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal geocode cache")
		return
	}

	cacheFile := filepath.Join(g.cacheDir, "geocode_cache.json")
	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		g.logger.WithError(err).Error("Failed to save geocode cache")
	}
}

type nominatimResponse []struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve turns an address into a coordinate pair. It tries the full
// free-text address first and falls back to postal-code-only resolution;
// only when both fail does it report ErrLocationNotFound. The postal code
// must match the country format before anything is sent upstream.
func (g *Geocoder) Resolve(ctx context.Context, address models.Address) (models.GeoPoint, error) {
	if !address.HasValidPostalCode() {
		return models.GeoPoint{}, apperrors.Validation("postal_code", "must be a 4-digit Swiss postal code")
	}

	cacheKey := fmt.Sprintf("%s|%s|%s|%s|%s",
		address.Street, address.HouseNumber, address.PostalCode, address.City, address.CountryCode())

	g.cacheLock.RLock()
	if point, ok := g.cache[cacheKey]; ok {
		g.cacheLock.RUnlock()
		g.logger.WithFields(logrus.Fields{
			"address": address.FreeText(),
			"source":  "cache",
		}).Info("Found coordinates in cache")
		return point, nil
	}
	g.cacheLock.RUnlock()

	point, err := g.search(ctx, url.Values{
		"q":            []string{address.FreeText()},
		"format":       []string{"json"},
		"limit":        []string{"1"},
		"countrycodes": []string{"ch"},
	})
	if err == nil {
		g.store(cacheKey, address, point, "freetext")
		return point, nil
	}
	if !isNotFound(err) {
		return models.GeoPoint{}, err
	}

	// Full-text lookup found nothing; the postal code alone usually still
	// resolves to the town center.
	point, err = g.search(ctx, url.Values{
		"postalcode": []string{address.PostalCode},
		"country":    []string{address.CountryCode()},
		"format":     []string{"json"},
		"limit":      []string{"1"},
	})
	if err != nil {
		if isNotFound(err) {
			g.logger.WithField("address", address.FreeText()).Warn("No results found")
		}
		return models.GeoPoint{}, err
	}

	g.store(cacheKey, address, point, "postalcode")
	return point, nil
}

// search performs one rate-limited Nominatim query and parses the first
// result's coordinate pair.
func (g *Geocoder) search(ctx context.Context, params url.Values) (models.GeoPoint, error) {
	g.limiter.wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.opts.BaseURL, nil)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "de-CH,de;q=0.9,fr-CH;q=0.8,en;q=0.7")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).Error("Geocoding request failed")
		return models.GeoPoint{}, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.GeoPoint{}, fmt.Errorf("%w: unexpected status %d", apperrors.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	var result nominatimResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: failed to parse response: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	if len(result) == 0 {
		return models.GeoPoint{}, apperrors.ErrLocationNotFound
	}

	lat, latErr := strconv.ParseFloat(result[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(result[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: malformed coordinates in response", apperrors.ErrUpstreamUnavailable)
	}

	point := models.GeoPoint{Latitude: lat, Longitude: lon}
	if !point.InBounds() {
		// A match outside the country of operation is a wrong match.
		return models.GeoPoint{}, apperrors.ErrLocationNotFound
	}
	return point, nil
}

func (g *Geocoder) store(cacheKey string, address models.Address, point models.GeoPoint, source string) {
	g.logger.WithFields(logrus.Fields{
		"address":   address.FreeText(),
		"latitude":  point.Latitude,
		"longitude": point.Longitude,
		"source":    source,
	}).Info("Successfully geocoded address")

	g.cacheLock.Lock()
	g.cache[cacheKey] = point
	g.cacheLock.Unlock()

	go g.saveCache()
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrLocationNotFound)
}

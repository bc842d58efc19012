package amenity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"rentfair/server/internal/apperrors"
	"rentfair/server/internal/models"
)

// Options configure the Overpass client.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = "https://overpass-api.de/api/interpreter"
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return o
}

// Client queries the Overpass spatial index for points of interest around a
// coordinate. Failures are reported but never fatal: a broken amenity
// lookup must not abort the price-estimation flow.
type Client struct {
	logger *logrus.Logger
	opts   Options
	client *http.Client
}

func NewClient(logger *logrus.Logger, opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		logger: logger,
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

type overpassCenter struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// Coordinates decode as pointers: 0 is a valid latitude and longitude, so
// absence has to be nil rather than the zero value.
type overpassElement struct {
	Type   string            `json:"type"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// buildQuery selects nodes, ways and relations carrying the category's tag
// within a circular radius, asking for centroid coordinates on non-point
// geometries.
func buildQuery(category models.AmenityCategory, origin models.GeoPoint, radiusMeters int) string {
	tag := category.Tag()
	var b strings.Builder
	b.WriteString("[out:json];\n(\n")
	for _, kind := range []string{"node", "way", "relation"} {
		fmt.Fprintf(&b, "  %s[%q=%q](around:%d,%f,%f);\n",
			kind, tag.Key, tag.Value, radiusMeters, origin.Latitude, origin.Longitude)
	}
	b.WriteString(");\nout center;\n")
	return b.String()
}

// Fetch returns the amenity candidates of one category around origin.
// Candidates lacking both a native coordinate and a centroid are discarded.
func (c *Client) Fetch(ctx context.Context, category models.AmenityCategory, origin models.GeoPoint, radiusMeters int) ([]models.AmenityCandidate, error) {
	query := buildQuery(category, origin, radiusMeters)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("category", category).Error("Amenity request failed")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", apperrors.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	var result overpassResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	candidates := make([]models.AmenityCandidate, 0, len(result.Elements))
	for _, el := range result.Elements {
		candidate, ok := toCandidate(category, el)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
	}

	c.logger.WithFields(logrus.Fields{
		"category":   category,
		"elements":   len(result.Elements),
		"candidates": len(candidates),
	}).Info("Fetched amenities")

	return candidates, nil
}

// toCandidate applies the centroid resolution policy: native lat/lon when
// present, else the geometry's reported center, else discard.
func toCandidate(category models.AmenityCategory, el overpassElement) (models.AmenityCandidate, bool) {
	candidate := models.AmenityCandidate{
		Category: category,
		Name:     el.Tags["name"],
	}

	switch {
	case el.Lat != nil && el.Lon != nil:
		candidate.Point = models.GeoPoint{Latitude: *el.Lat, Longitude: *el.Lon}
		candidate.Source = models.SourcePoint
	case el.Center != nil && el.Center.Lat != nil && el.Center.Lon != nil:
		candidate.Point = models.GeoPoint{Latitude: *el.Center.Lat, Longitude: *el.Center.Lon}
		candidate.Source = models.SourceCentroid
	default:
		return models.AmenityCandidate{}, false
	}
	return candidate, true
}

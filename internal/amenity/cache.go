package amenity

import (
	"fmt"
	"sync"

	"github.com/mmcloughlin/geohash"

	"rentfair/server/internal/models"
)

// Cache keeps fetched candidates for the lifetime of a user session so the
// UI can re-render without triggering redundant upstream calls. The origin
// goes into the key as a geohash cell of a few meters, which also absorbs
// float jitter in re-submitted coordinates.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]models.AmenityCandidate
}

// geohash precision 9 is a cell of roughly 5 meters.
const cacheKeyPrecision = 9

func NewCache() *Cache {
	return &Cache{entries: make(map[string][]models.AmenityCandidate)}
}

func cacheKey(category models.AmenityCategory, origin models.GeoPoint, radiusMeters int) string {
	cell := geohash.EncodeWithPrecision(origin.Latitude, origin.Longitude, cacheKeyPrecision)
	return fmt.Sprintf("%s|%s|%d", category, cell, radiusMeters)
}

// Get returns the cached candidates for the query key, if any.
func (c *Cache) Get(category models.AmenityCategory, origin models.GeoPoint, radiusMeters int) ([]models.AmenityCandidate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	candidates, ok := c.entries[cacheKey(category, origin, radiusMeters)]
	return candidates, ok
}

// Put stores the result of one fetch. Empty results are cached too:
// an area with no pharmacies will not grow one between re-renders.
func (c *Cache) Put(category models.AmenityCategory, origin models.GeoPoint, radiusMeters int, candidates []models.AmenityCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(category, origin, radiusMeters)] = candidates
}

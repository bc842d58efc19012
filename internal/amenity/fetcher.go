package amenity

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"rentfair/server/internal/models"
	"rentfair/server/internal/ranking"
)

// CategoryResult is the outcome of one category's lookup. A failed category
// carries an error message and an empty ranking; it never fails the whole
// request.
type CategoryResult struct {
	Category models.AmenityCategory   `json:"category"`
	Ranked   []models.AmenityDistance `json:"ranked"`
	Err      string                   `json:"error,omitempty"`
}

// Fetcher runs amenity lookups for several categories concurrently against
// a bounded worker pool, ranks each category by distance and merges the
// results back in category-selection order, so identical inputs always
// produce identical output ordering.
type Fetcher struct {
	client      *Client
	logger      *logrus.Logger
	workers     int
	perCategory int
}

func NewFetcher(client *Client, logger *logrus.Logger, workers, perCategory int) *Fetcher {
	if workers <= 0 {
		workers = 3
	}
	if perCategory <= 0 {
		perCategory = 3
	}
	return &Fetcher{
		client:      client,
		logger:      logger,
		workers:     workers,
		perCategory: perCategory,
	}
}

// FetchRanked resolves all requested categories around origin. Repeated
// categories are fetched and reported once, keeping first-occurrence order.
// cache may be nil for uncached one-off lookups.
func (f *Fetcher) FetchRanked(ctx context.Context, origin models.GeoPoint, categories []models.AmenityCategory, radiusMeters int, cache *Cache) []CategoryResult {
	categories = dedupe(categories)
	results := make([]CategoryResult, len(categories))

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < f.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = f.fetchOne(ctx, origin, categories[idx], radiusMeters, cache)
			}
		}()
	}

	for idx := range categories {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return results
}

func dedupe(categories []models.AmenityCategory) []models.AmenityCategory {
	seen := make(map[models.AmenityCategory]bool, len(categories))
	unique := make([]models.AmenityCategory, 0, len(categories))
	for _, category := range categories {
		if seen[category] {
			continue
		}
		seen[category] = true
		unique = append(unique, category)
	}
	return unique
}

func (f *Fetcher) fetchOne(ctx context.Context, origin models.GeoPoint, category models.AmenityCategory, radiusMeters int, cache *Cache) CategoryResult {
	result := CategoryResult{Category: category, Ranked: []models.AmenityDistance{}}

	candidates, cached := []models.AmenityCandidate(nil), false
	if cache != nil {
		candidates, cached = cache.Get(category, origin, radiusMeters)
	}

	if !cached {
		var err error
		candidates, err = f.client.Fetch(ctx, category, origin, radiusMeters)
		if err != nil {
			f.logger.WithError(err).WithField("category", category).Warn("Amenity lookup degraded to empty result")
			result.Err = "failed to retrieve " + category.Title() + " amenities"
			return result
		}
		if cache != nil {
			cache.Put(category, origin, radiusMeters, candidates)
		}
	}

	result.Ranked = ranking.Rank(origin, candidates, f.perCategory)
	return result
}

// Flatten merges per-category rankings in selection order with a combined
// cap across all categories.
func Flatten(results []CategoryResult, total int) []models.AmenityDistance {
	order := make([]models.AmenityCategory, len(results))
	perCategory := make(map[models.AmenityCategory][]models.AmenityDistance, len(results))
	for i, r := range results {
		order[i] = r.Category
		perCategory[r.Category] = r.Ranked
	}
	return ranking.CapTotal(order, perCategory, total)
}

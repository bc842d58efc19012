package ranking

import (
	"sort"

	"github.com/paulmach/orb/geo"

	"rentfair/server/internal/models"
)

// Rank computes the great-circle distance from origin to every candidate,
// orders ascending and truncates to limit. Ties keep their discovery order
// (stable sort). An empty candidate set yields an empty slice, not an
// error. limit <= 0 disables truncation.
func Rank(origin models.GeoPoint, candidates []models.AmenityCandidate, limit int) []models.AmenityDistance {
	type measured struct {
		candidate models.AmenityCandidate
		meters    float64
	}

	results := make([]measured, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, measured{
			candidate: candidate,
			meters:    geo.DistanceHaversine(origin.Point(), candidate.Point.Point()),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].meters < results[j].meters
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	ranked := make([]models.AmenityDistance, len(results))
	for i, r := range results {
		ranked[i] = models.AmenityDistance{
			Category:       r.candidate.Category,
			Name:           r.candidate.DisplayName(),
			DistanceMeters: int(r.meters),
			Point:          r.candidate.Point,
		}
	}
	return ranked
}

// CapTotal flattens per-category rankings in the given category order and
// cuts the combined list off at total. Per-category order is preserved so
// the merge is deterministic for identical inputs.
func CapTotal(order []models.AmenityCategory, perCategory map[models.AmenityCategory][]models.AmenityDistance, total int) []models.AmenityDistance {
	var flattened []models.AmenityDistance
	for _, category := range order {
		flattened = append(flattened, perCategory[category]...)
	}
	if total > 0 && len(flattened) > total {
		flattened = flattened[:total]
	}
	return flattened
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"
)

// AmenitiesGeoJSON renders the session's resolved location and amenity
// results as a GeoJSON FeatureCollection. This is the whole contract with
// the map layer: it draws markers, the core never touches tiles.
func (h *Handler) AmenitiesGeoJSON(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if s.Location == nil {
		respondError(c, http.StatusNotFound, codeNotFound, "session has no resolved location", "")
		return
	}

	collection := geojson.NewFeatureCollection()

	property := geojson.NewFeature(s.Location.Point())
	property.Properties["kind"] = "property"
	property.Properties["name"] = "Your Property"
	collection.Append(property)

	for _, result := range s.Amenities {
		for _, ranked := range result.Ranked {
			feature := geojson.NewFeature(ranked.Point.Point())
			feature.Properties["kind"] = "amenity"
			feature.Properties["category"] = string(ranked.Category)
			feature.Properties["name"] = ranked.Name
			feature.Properties["distance_meters"] = ranked.DistanceMeters
			collection.Append(feature)
		}
	}

	c.JSON(http.StatusOK, collection)
}

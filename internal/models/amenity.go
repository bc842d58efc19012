package models

import "strings"

// AmenityCategory is a closed enumeration of the point-of-interest kinds the
// application knows how to query.
type AmenityCategory string

const (
	CategorySupermarket AmenityCategory = "supermarket"
	CategorySchool      AmenityCategory = "school"
	CategoryHospital    AmenityCategory = "hospital"
	CategoryPharmacy    AmenityCategory = "pharmacy"
	CategoryRestaurant  AmenityCategory = "restaurant"
)

// AllCategories lists the supported categories in display order.
var AllCategories = []AmenityCategory{
	CategorySupermarket,
	CategorySchool,
	CategoryHospital,
	CategoryPharmacy,
	CategoryRestaurant,
}

// OSMTag is one (key, value) pair in the OpenStreetMap tagging scheme.
type OSMTag struct {
	Key   string
	Value string
}

// categoryTags maps each category to its OSM tag. Supermarkets are tagged
// under shop=*, everything else under amenity=*.
var categoryTags = map[AmenityCategory]OSMTag{
	CategorySupermarket: {Key: "shop", Value: "supermarket"},
	CategorySchool:      {Key: "amenity", Value: "school"},
	CategoryHospital:    {Key: "amenity", Value: "hospital"},
	CategoryPharmacy:    {Key: "amenity", Value: "pharmacy"},
	CategoryRestaurant:  {Key: "amenity", Value: "restaurant"},
}

// Tag returns the OSM tag for the category. Unrecognized categories fall
// back to amenity=<lowercased name> so a lookup still returns something
// sensible instead of failing.
func (c AmenityCategory) Tag() OSMTag {
	if tag, ok := categoryTags[c]; ok {
		return tag
	}
	return OSMTag{Key: "amenity", Value: strings.ToLower(string(c))}
}

// Title returns the category name capitalized for display.
func (c AmenityCategory) Title() string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseCategory normalizes a user-supplied category name.
func ParseCategory(s string) AmenityCategory {
	return AmenityCategory(strings.ToLower(strings.TrimSpace(s)))
}

// SourceKind tells how a candidate's coordinate was obtained.
type SourceKind string

const (
	// SourcePoint means the element carried its own lat/lon (an OSM node).
	SourcePoint SourceKind = "point"
	// SourceCentroid means the coordinate is the reported center of a way
	// or relation.
	SourceCentroid SourceKind = "centroid"
)

// AmenityCandidate is one point of interest returned by the spatial index.
// Candidates are ephemeral: fetched per query and cached per session.
type AmenityCandidate struct {
	Category AmenityCategory `json:"category"`
	Name     string          `json:"name"`
	Point    GeoPoint        `json:"point"`
	Source   SourceKind      `json:"source"`
}

// DisplayName returns the candidate's name, or the generated placeholder
// when the element carried no name tag.
func (c AmenityCandidate) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Category.Title() + " (Unnamed)"
}

// AmenityDistance is one ranked result: a named candidate with its
// great-circle distance from the property.
type AmenityDistance struct {
	Category       AmenityCategory `json:"category"`
	Name           string          `json:"name"`
	DistanceMeters int             `json:"distance_meters"`
	Point          GeoPoint        `json:"point"`
}

package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/paulmach/orb"
)

// Swiss postal codes are exactly four digits.
var swissPostalCode = regexp.MustCompile(`^\d{4}$`)

// Bounding box of Switzerland. Resolved coordinates outside this box are
// treated as bad geocoder answers.
const (
	minLatitude  = 45.8
	maxLatitude  = 47.9
	minLongitude = 5.9
	maxLongitude = 10.6
)

// Address is a postal address as entered by the user. Country defaults to
// CH and is only overridden in tests.
type Address struct {
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

// CountryCode returns the ISO country code for the address, defaulting to CH.
func (a Address) CountryCode() string {
	if a.Country == "" {
		return "CH"
	}
	return a.Country
}

// FreeText builds the single-line form used for full-text geocoding.
func (a Address) FreeText() string {
	street := strings.TrimSpace(a.Street + " " + a.HouseNumber)
	return fmt.Sprintf("%s, %s %s, %s", street, a.PostalCode, a.City, a.CountryCode())
}

// HasValidPostalCode reports whether the postal code matches the Swiss format.
func (a Address) HasValidPostalCode() bool {
	return swissPostalCode.MatchString(strings.TrimSpace(a.PostalCode))
}

// GeoPoint is a resolved coordinate pair. It is immutable once produced by
// the geocoder.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point converts to an orb.Point (lon/lat order).
func (p GeoPoint) Point() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// InBounds reports whether the point lies inside the country of operation.
func (p GeoPoint) InBounds() bool {
	return p.Latitude >= minLatitude && p.Latitude <= maxLatitude &&
		p.Longitude >= minLongitude && p.Longitude <= maxLongitude
}

package features

import (
	"math"
	"strconv"
	"strings"

	"rentfair/server/internal/apperrors"
	"rentfair/server/internal/models"
)

// Input bounds enforced before anything reaches the model.
const (
	MinRooms = 1.0
	MaxRooms = 20.0
	MinSize  = 10.0
	MaxSize  = 1000.0

	minRent = 100.0
	maxRent = 20000.0
)

// Normalize turns the free-form UI payload into the canonical feature
// record. It is pure and deterministic: no I/O, and the same raw input
// always yields the same record. A missing postal code or a non-coercible
// size is a hard failure; nothing partial is ever returned.
func Normalize(raw models.RawPropertyInput) (models.PropertyRecord, error) {
	var record models.PropertyRecord

	postalCode := strings.TrimSpace(raw.PostalCode)
	if postalCode == "" {
		return record, apperrors.Validation("postal_code", "is required")
	}
	zip, err := strconv.Atoi(postalCode)
	if err != nil || zip < 1000 || zip > 9999 {
		return record, apperrors.Validation("postal_code", "must be a 4-digit Swiss postal code")
	}

	size, err := parseNumber(raw.Size)
	if err != nil {
		return record, apperrors.Validation("size", "must be a number")
	}
	if size < MinSize || size > MaxSize {
		return record, apperrors.Validation("size", "must be between %.0f and %.0f m²", MinSize, MaxSize)
	}

	rooms, err := parseNumber(raw.Rooms)
	if err != nil {
		return record, apperrors.Validation("rooms", "must be a number")
	}
	if rooms < MinRooms || rooms > MaxRooms {
		return record, apperrors.Validation("rooms", "must be between %.0f and %.0f", MinRooms, MaxRooms)
	}
	// Room counts come in half-room steps (3, 3.5, 4, ...).
	if math.Mod(rooms*2, 1) != 0 {
		return record, apperrors.Validation("rooms", "must be a multiple of 0.5")
	}

	propertyType, err := normalizeType(raw.PropertyType)
	if err != nil {
		return record, err
	}

	demandedRent := 0.0
	if strings.TrimSpace(raw.DemandedRent) != "" {
		demandedRent, err = parseNumber(raw.DemandedRent)
		if err != nil {
			return record, apperrors.Validation("demanded_rent", "must be a number")
		}
		if demandedRent < minRent || demandedRent > maxRent {
			return record, apperrors.Validation("demanded_rent", "must be between %.0f and %.0f CHF", minRent, maxRent)
		}
	}

	record = models.PropertyRecord{
		PostalCode:   zip,
		City:         strings.TrimSpace(raw.City),
		Rooms:        rooms,
		Size:         size,
		PropertyType: propertyType,
		Renovated:    renovatedFlag(raw.Renovated),
		ParkingTier:  parkingTier(raw.Parking),
		Outdoor:      outdoorFlag(raw.OutdoorSpace),
		DemandedRent: demandedRent,
	}
	return record, nil
}

// outdoorFlag is 0 only for an explicit or implicit "No"; any named outdoor
// space (Balcony, Terrace, Roof Terrace, Garden) counts as 1.
func outdoorFlag(selection string) int {
	s := strings.TrimSpace(selection)
	if s == "" || strings.EqualFold(s, "No") {
		return 0
	}
	return 1
}

func renovatedFlag(selection string) int {
	if strings.EqualFold(strings.TrimSpace(selection), "Yes") {
		return 1
	}
	return 0
}

// parkingTier maps the parking selection to its ordinal tier. Anything
// unrecognized means no parking.
func parkingTier(selection string) int {
	switch strings.TrimSpace(selection) {
	case "Parking Outdoor", "Outdoor":
		return models.ParkingOutdoor
	case "Garage":
		return models.ParkingGarage
	default:
		return models.ParkingNone
	}
}

func normalizeType(propertyType string) (string, error) {
	switch strings.TrimSpace(propertyType) {
	case "":
		return models.TypeApartment, nil
	case models.TypeApartment, models.TypeHouse, models.TypeDuplex:
		return strings.TrimSpace(propertyType), nil
	default:
		return "", apperrors.Validation("property_type", "must be one of Apartment, House, Duplex")
	}
}

// parseNumber accepts the numeric formats the UI produces: "85", "85.5",
// and locale variants with a comma decimal separator.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	return strconv.ParseFloat(s, 64)
}

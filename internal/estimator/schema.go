package estimator

import (
	"fmt"

	"rentfair/server/internal/models"
)

// Schema identifiers. The model artifact declares which one it was trained
// against; call sites never branch on field presence.
const (
	// SchemaStandard is the canonical 8-field frame: postal code, rooms,
	// size, property type (one-hot), renovation flag, parking tier and
	// outdoor flag.
	SchemaStandard = "standard/v2"

	// SchemaCompact is the legacy 4-field frame used by early deployments:
	// latitude, longitude, size and a garden flag. Kept only as an explicit
	// adapter for old artifacts.
	SchemaCompact = "compact/v1"
)

// Schema encodes a canonical property record into the named feature values
// a model was trained on.
type Schema interface {
	ID() string
	Encode(record models.PropertyRecord, point *models.GeoPoint) (map[string]float64, error)
}

// SchemaByID resolves a schema identifier from a model artifact. Unknown
// identifiers are a startup error, not a per-request one.
func SchemaByID(id string) (Schema, error) {
	switch id {
	case SchemaStandard:
		return standardSchema{}, nil
	case SchemaCompact:
		return compactSchema{}, nil
	default:
		return nil, fmt.Errorf("unknown model schema %q", id)
	}
}

type standardSchema struct{}

func (standardSchema) ID() string { return SchemaStandard }

func (standardSchema) Encode(record models.PropertyRecord, _ *models.GeoPoint) (map[string]float64, error) {
	features := map[string]float64{
		"zip":                 float64(record.PostalCode),
		"number_of_rooms":     record.Rooms,
		"square_meters":       record.Size,
		"is_renovated_or_new": float64(record.Renovated),
		"has_parking":         float64(record.ParkingTier),
		"has_outdoor_space":   float64(record.Outdoor),
	}

	// One-hot property type.
	for _, t := range []string{models.TypeApartment, models.TypeHouse, models.TypeDuplex} {
		value := 0.0
		if record.PropertyType == t {
			value = 1.0
		}
		features["place_type_"+t] = value
	}
	return features, nil
}

type compactSchema struct{}

func (compactSchema) ID() string { return SchemaCompact }

func (compactSchema) Encode(record models.PropertyRecord, point *models.GeoPoint) (map[string]float64, error) {
	if point == nil {
		return nil, fmt.Errorf("schema %s requires resolved coordinates", SchemaCompact)
	}
	return map[string]float64{
		"latitude":      point.Latitude,
		"longitude":     point.Longitude,
		"square_meters": record.Size,
		"has_garden":    float64(record.Outdoor),
	}, nil
}

package models

// Property type values accepted by the canonical schema.
const (
	TypeApartment = "Apartment"
	TypeHouse     = "House"
	TypeDuplex    = "Duplex"
)

// Parking tiers, ordinal.
const (
	ParkingNone    = 0
	ParkingOutdoor = 1
	ParkingGarage  = 2
)

// RawPropertyInput is the free-form payload collected by the UI. Everything
// arrives as text; the normalizer owns all coercion and validation.
type RawPropertyInput struct {
	Street       string `json:"street"`
	HouseNumber  string `json:"house_number"`
	PostalCode   string `json:"postal_code"`
	City         string `json:"city"`
	Size         string `json:"size"`
	Rooms        string `json:"rooms"`
	PropertyType string `json:"property_type"`
	OutdoorSpace string `json:"outdoor_space"` // No / Balcony / Terrace / Roof Terrace / Garden
	Renovated    string `json:"renovated"`     // Yes / No
	Parking      string `json:"parking"`       // No / Parking Outdoor / Garage
	DemandedRent string `json:"demanded_rent"` // optional, CHF per month
}

// PropertyRecord is the canonical feature vector fed to the price model.
// Every field is present and type-coerced; records are only produced by the
// normalizer.
type PropertyRecord struct {
	PostalCode   int     `json:"postal_code"`
	City         string  `json:"city"`
	Rooms        float64 `json:"rooms"`
	Size         float64 `json:"size"`
	PropertyType string  `json:"property_type"`
	Renovated    int     `json:"renovated"`
	ParkingTier  int     `json:"parking_tier"`
	Outdoor      int     `json:"outdoor"`
	DemandedRent float64 `json:"demanded_rent,omitempty"`
}

// RentVerdict places a demanded rent relative to the estimated band.
type RentVerdict string

const (
	VerdictBelow  RentVerdict = "below"
	VerdictWithin RentVerdict = "within"
	VerdictAbove  RentVerdict = "above"
)

// MarketComparison is the per-m²-per-year baseline for the record's region.
type MarketComparison struct {
	PostalCode        int     `json:"postal_code"`
	AveragePerSqmYear float64 `json:"average_per_sqm_year"`
	// MonthlyAtAverage is what the property would rent for per month at the
	// market average rate.
	MonthlyAtAverage float64 `json:"monthly_at_average"`
}

// PriceEstimate is the model output plus the derived band and comparisons.
type PriceEstimate struct {
	Point      float64 `json:"point"`
	LowerBound int     `json:"lower_bound"`
	UpperBound int     `json:"upper_bound"`
	// PerSqmYear is the property's own price per m² per year at the point
	// estimate.
	PerSqmYear float64           `json:"per_sqm_year"`
	Market     *MarketComparison `json:"market,omitempty"`
	Verdict    RentVerdict       `json:"verdict,omitempty"`
}

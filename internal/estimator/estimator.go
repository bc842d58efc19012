package estimator

import (
	"math"

	"github.com/sirupsen/logrus"

	"rentfair/server/internal/market"
	"rentfair/server/internal/models"
)

// Band width around the point estimate.
const (
	lowerFactor = 0.9
	upperFactor = 1.1
)

// Estimator turns a canonical property record into a price estimate with a
// confidence band and a market-average comparison.
type Estimator struct {
	model  Model
	schema Schema
	table  *market.Table
	logger *logrus.Logger
}

// New wires a loaded model to the market table. The schema is resolved from
// the artifact here so a mismatch fails at startup, never per request.
func New(model Model, table *market.Table, logger *logrus.Logger) (*Estimator, error) {
	schema, err := SchemaByID(model.SchemaID())
	if err != nil {
		return nil, err
	}
	return &Estimator{
		model:  model,
		schema: schema,
		table:  table,
		logger: logger,
	}, nil
}

// Estimate runs the model on the record and derives the band, the
// per-m²-per-year figure and the market comparison. point may be nil; it is
// only consulted by schemas that need coordinates.
func (e *Estimator) Estimate(record models.PropertyRecord, point *models.GeoPoint) (models.PriceEstimate, error) {
	features, err := e.schema.Encode(record, point)
	if err != nil {
		return models.PriceEstimate{}, err
	}

	price, err := e.model.Predict(features)
	if err != nil {
		return models.PriceEstimate{}, err
	}

	estimate := models.PriceEstimate{
		Point:      price,
		LowerBound: int(math.Floor(price * lowerFactor)),
		UpperBound: int(math.Floor(price * upperFactor)),
		PerSqmYear: price / record.Size * 12,
		Market:     e.marketComparison(record),
	}

	if record.DemandedRent > 0 {
		estimate.Verdict = verdict(record.DemandedRent, estimate.LowerBound, estimate.UpperBound)
	}

	e.logger.WithFields(logrus.Fields{
		"postal_code": record.PostalCode,
		"size":        record.Size,
		"estimate":    int(price),
		"model":       e.model.Version(),
	}).Info("Produced price estimate")

	return estimate, nil
}

// marketComparison looks the record's region up in the market table. An
// absent region yields nil, never an error: missing market data must not
// fail the estimate.
func (e *Estimator) marketComparison(record models.PropertyRecord) *models.MarketComparison {
	avg, ok := e.table.LookupZIP(record.PostalCode)
	if !ok && record.City != "" {
		avg, ok = e.table.LookupCity(record.City)
	}
	if !ok {
		return nil
	}
	return &models.MarketComparison{
		PostalCode:        record.PostalCode,
		AveragePerSqmYear: avg,
		MonthlyAtAverage:  math.Round(avg/12*record.Size*100) / 100,
	}
}

func verdict(rent float64, lower, upper int) models.RentVerdict {
	switch {
	case rent < float64(lower):
		return models.VerdictBelow
	case rent > float64(upper):
		return models.VerdictAbove
	default:
		return models.VerdictWithin
	}
}

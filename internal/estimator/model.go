package estimator

import (
	"encoding/json"
	"fmt"
	"os"

	"rentfair/server/internal/apperrors"
)

// Model is the narrow boundary around the trained regressor. The training
// pipeline that produced the artifact is out of scope and can be swapped
// without touching anything else.
type Model interface {
	Predict(features map[string]float64) (float64, error)
	SchemaID() string
	Version() string
}

// modelArtifact is the on-disk export of the trained pipeline: a linear
// frame of per-feature coefficients plus an intercept, tagged with the
// schema it was trained against.
type modelArtifact struct {
	Version      string             `json:"version"`
	Schema       string             `json:"schema"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
}

// LinearModel applies an exported coefficient frame to an encoded feature
// map.
type LinearModel struct {
	version      string
	schemaID     string
	intercept    float64
	coefficients map[string]float64
}

// LoadModel reads the model artifact from disk. Any failure here means the
// service cannot answer estimates and must not start.
func LoadModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrModelUnavailable, err)
	}

	var artifact modelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: failed to parse artifact: %v", apperrors.ErrModelUnavailable, err)
	}
	if artifact.Schema == "" || len(artifact.Coefficients) == 0 {
		return nil, fmt.Errorf("%w: artifact missing schema or coefficients", apperrors.ErrModelUnavailable)
	}

	return &LinearModel{
		version:      artifact.Version,
		schemaID:     artifact.Schema,
		intercept:    artifact.Intercept,
		coefficients: artifact.Coefficients,
	}, nil
}

func (m *LinearModel) SchemaID() string { return m.schemaID }

func (m *LinearModel) Version() string { return m.version }

// Predict evaluates the frame. Every coefficient must find its feature; a
// gap means the record and the artifact disagree about the schema, which is
// a caller bug, not an estimation result.
func (m *LinearModel) Predict(features map[string]float64) (float64, error) {
	price := m.intercept
	for name, coefficient := range m.coefficients {
		value, ok := features[name]
		if !ok {
			return 0, fmt.Errorf("feature %q missing from encoded record", name)
		}
		price += coefficient * value
	}
	return price, nil
}

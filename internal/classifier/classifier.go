// Package classifier loads the pretrained market/financial risk classifier.
//
// The artifact is an exported logistic regression: feature names, coefficients,
// intercept, and an optional standard scaler fitted alongside it. The positive
// class is "fraud risk".
package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/genuinity/internal/model"
	"gopkg.in/yaml.v3"
)

// Classifier estimates the positive-class probability for feature rows
type Classifier interface {
	// PredictProba returns one probability per row, in input order
	PredictProba(rows []model.FeatureRow) ([]float64, error)

	// Name identifies the artifact
	Name() string
}

// Scaler standardizes inputs as (x - mean) / scale
type Scaler struct {
	Mean  []float64 `json:"mean" yaml:"mean"`
	Scale []float64 `json:"scale" yaml:"scale"`
}

// LogisticRegression is a binary logistic regression artifact
type LogisticRegression struct {
	ModelName    string    `json:"name" yaml:"name"`
	Features     []string  `json:"features" yaml:"features"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
	Scaler       *Scaler   `json:"scaler,omitempty" yaml:"scaler,omitempty"`
}

// Load reads an artifact from a .json, .yaml or .yml file
func Load(path string) (*LogisticRegression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.LoadError{Resource: "classifier", Path: path, Err: err}
	}

	var m LogisticRegression
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, &model.LoadError{Resource: "classifier", Path: path, Err: fmt.Errorf("decode: %w", err)}
	}

	if err := m.Check(); err != nil {
		return nil, &model.LoadError{Resource: "classifier", Path: path, Err: err}
	}
	if m.ModelName == "" {
		m.ModelName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return &m, nil
}

// Check verifies the artifact is internally consistent
func (m *LogisticRegression) Check() error {
	if len(m.Features) == 0 {
		return fmt.Errorf("no features")
	}
	if len(m.Coefficients) != len(m.Features) {
		return fmt.Errorf("%d coefficients for %d features", len(m.Coefficients), len(m.Features))
	}
	if m.Scaler != nil {
		if len(m.Scaler.Mean) != len(m.Features) || len(m.Scaler.Scale) != len(m.Features) {
			return fmt.Errorf("scaler size does not match %d features", len(m.Features))
		}
		for i, s := range m.Scaler.Scale {
			if s == 0 {
				return fmt.Errorf("scaler scale for %q is zero", m.Features[i])
			}
		}
	}
	return nil
}

// Name returns the artifact name
func (m *LogisticRegression) Name() string {
	return m.ModelName
}

// PredictProba returns P(fraud risk) for each row.
// A row missing a model feature, or holding a non-finite value, fails the whole call.
func (m *LogisticRegression) PredictProba(rows []model.FeatureRow) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		z := m.Intercept
		for j, name := range m.Features {
			x, ok := row.Values[name]
			if !ok {
				return nil, fmt.Errorf("row %d (%s): missing feature %q", row.Row, row.Category, name)
			}
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("row %d (%s): feature %q is not finite", row.Row, row.Category, name)
			}
			if m.Scaler != nil {
				x = (x - m.Scaler.Mean[j]) / m.Scaler.Scale[j]
			}
			z += m.Coefficients[j] * x
		}
		out[i] = sigmoid(z)
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

package score

import (
	"fmt"
	"math"
	"time"

	"github.com/ppiankov/genuinity/internal/classifier"
	"github.com/ppiankov/genuinity/internal/model"
)

// FeatureSource returns the feature rows of a company category, oldest first
type FeatureSource interface {
	FeatureRowsFor(category string) []model.FeatureRow
}

// MarketModel runs the market/financial classifier over a category's feature rows
type MarketModel struct {
	features FeatureSource
	clf      classifier.Classifier
}

// NewMarketModel creates a model over features using clf
func NewMarketModel(features FeatureSource, clf classifier.Classifier) *MarketModel {
	return &MarketModel{features: features, clf: clf}
}

// Score predicts P(fraud risk) for every row of the category and returns the
// probability of the last row, which is the most recent when rows are dated.
// The full distribution is returned alongside, in row order.
func (m *MarketModel) Score(category string) (Outcome, []float64, error) {
	var probs []float64

	out, err := withFallback(model.SignalMarketFinancial, NeutralRisk, func() (Outcome, error) {
		rows := m.features.FeatureRowsFor(category)
		if len(rows) == 0 {
			return Outcome{}, noData("no feature rows for category", map[string]interface{}{
				"category": category,
			})
		}

		p, err := m.clf.PredictProba(rows)
		if err != nil {
			return Outcome{}, &model.InferenceError{Stage: "classifier", Err: err}
		}
		if len(p) != len(rows) {
			return Outcome{}, &model.InferenceError{
				Stage: "classifier",
				Err:   fmt.Errorf("%d probabilities for %d rows", len(p), len(rows)),
			}
		}
		for i, v := range p {
			if math.IsNaN(v) || v < 0 || v > 1 {
				return Outcome{}, &model.InferenceError{
					Stage: "classifier",
					Err:   fmt.Errorf("row %d: probability %v outside [0,1]", rows[i].Row, v),
				}
			}
		}
		probs = p

		last := rows[len(rows)-1]
		data := map[string]interface{}{
			"category":  category,
			"rows":      len(rows),
			"model":     m.clf.Name(),
			"selection": "last row",
		}
		if !last.Date.IsZero() {
			data["row_date"] = last.Date.Format(time.DateOnly)
		}

		return Outcome{Value: p[len(p)-1], Data: data}, nil
	})

	return out, probs, err
}

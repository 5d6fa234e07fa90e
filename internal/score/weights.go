package score

import "github.com/ppiankov/genuinity/internal/model"

// Signal weights of the genuinity score
const (
	WeightMarket        = 0.4
	WeightContradiction = 0.3
	WeightAdvisor       = 0.3
)

// The weights must sum to exactly 1; either line overflows uint otherwise.
const weightSum = WeightMarket + WeightContradiction + WeightAdvisor

const (
	_ uint = weightSum*100 - 100
	_ uint = 100 - weightSum*100
)

// Verdict band thresholds, both exclusive
const (
	HighThreshold     = 0.65
	ModerateThreshold = 0.4
)

// Genuinity combines the three signals with the fixed weights
func Genuinity(market, contradiction, advisor float64) float64 {
	return WeightMarket*market + WeightContradiction*contradiction + WeightAdvisor*advisor
}

// VerdictFor maps a genuinity score onto its band
func VerdictFor(score float64) model.Verdict {
	switch {
	case score > HighThreshold:
		return model.VerdictHigh
	case score > ModerateThreshold:
		return model.VerdictModerate
	default:
		return model.VerdictLow
	}
}

package model

import "time"

// Report wraps a validation result with the post it was computed for
type Report struct {
	ID          string           `json:"id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Post        PostRecord       `json:"post"`
	Result      ValidationResult `json:"result"`
}

// ValidationResult is the full output of a single validate call.
// It is always complete; a failed sub-score fails the whole call.
type ValidationResult struct {
	MarketFinancialRisk    float64   `json:"market_financial_risk"`
	MarketRowProbabilities []float64 `json:"market_row_probabilities,omitempty"` // One per matching feature row, in store order
	ContradictionScore     float64   `json:"contradiction_score"`
	AdvisorRisk            float64   `json:"advisor_risk"`
	GenuinityScore         float64   `json:"genuinity_score"`
	Verdict                Verdict   `json:"verdict"`
	VerdictText            string    `json:"verdict_text"`
	Signals                []Signal  `json:"signals"`
}

// Verdict is the categorical band of a genuinity score
type Verdict string

const (
	VerdictHigh     Verdict = "high"
	VerdictModerate Verdict = "moderate"
	VerdictLow      Verdict = "low"
)

// Message returns the fixed human-readable verdict text
func (v Verdict) Message() string {
	switch v {
	case VerdictHigh:
		return "The post is highly likely a fraud attempt."
	case VerdictModerate:
		return "Moderate likelihood. Worth monitoring."
	default:
		return "Low likelihood. May be an unsubstantiated rumor."
	}
}

// Signal describes one component of the genuinity score with its inputs
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Value       float64                `json:"value"`
	Weight      float64                `json:"weight"`
	Fallback    bool                   `json:"fallback"` // Neutral default substituted for missing data
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the component
type SignalType string

const (
	SignalMarketFinancial SignalType = "market_financial_risk"
	SignalContradiction   SignalType = "contradiction"
	SignalAdvisor         SignalType = "advisor_risk"
)

// SignalSeverity indicates how much risk the component carries
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// SeverityFor maps a risk value in [0,1] onto a severity
func SeverityFor(risk float64) SignalSeverity {
	switch {
	case risk > 0.65:
		return SeverityCritical
	case risk > 0.4:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

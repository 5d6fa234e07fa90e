package score

import "github.com/ppiankov/genuinity/internal/model"

// Advisor statuses with a defined risk
const (
	StatusRevoked  = "Revoked"
	StatusNotFound = "Not Found"
	StatusActive   = "Active"
)

var advisorStatusRisk = map[string]float64{
	StatusRevoked:  0.9,
	StatusNotFound: 0.5,
	StatusActive:   0.1,
}

// AdvisorRiskFor returns the fixed risk for a status and whether the status is known
func AdvisorRiskFor(status string) (float64, bool) {
	risk, ok := advisorStatusRisk[status]
	return risk, ok
}

// AdvisorSource resolves an advisor record by exact (company, advisor) pair
type AdvisorSource interface {
	AdvisorRecord(company string, advisorName *string) (model.AdvisorRecord, bool)
}

// AdvisorResolver maps an advisor's status with a company onto a risk
type AdvisorResolver struct {
	advisors AdvisorSource
}

// NewAdvisorResolver creates a resolver over advisors
func NewAdvisorResolver(advisors AdvisorSource) *AdvisorResolver {
	return &AdvisorResolver{advisors: advisors}
}

// Score looks up the advisor. No match and unrecognised statuses both yield the neutral default.
func (r *AdvisorResolver) Score(company string, advisorName *string) (Outcome, error) {
	name := model.NormalizeAdvisorName(advisorName)

	return withFallback(model.SignalAdvisor, NeutralRisk, func() (Outcome, error) {
		data := map[string]interface{}{
			"company": company,
			"advisor": name,
		}

		rec, ok := r.advisors.AdvisorRecord(company, advisorName)
		if !ok {
			return Outcome{}, noData("no advisor record for company", data)
		}
		data["status"] = rec.Status

		risk, known := AdvisorRiskFor(rec.Status)
		if !known {
			return Outcome{}, noData("unrecognized advisor status", data)
		}

		return Outcome{Value: risk, Data: data}, nil
	})
}

// Package score computes the three fraud-risk signals of a post and combines
// them into a genuinity score and verdict.
package score

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/genuinity/internal/classifier"
	"github.com/ppiankov/genuinity/internal/embed"
	"github.com/ppiankov/genuinity/internal/model"
	"golang.org/x/sync/errgroup"
)

// Store is the read-only reference data the signals draw on
type Store interface {
	ReleaseSource
	AdvisorSource
	FeatureSource
}

// Request is the input of a single validation
type Request struct {
	PostText        string
	Company         string
	Date            string // calendar date, e.g. 2024-03-01
	CompanyCategory string
	AdvisorName     *string // nil when the post names no advisor
}

// Engine validates posts against a loaded store. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	market        *MarketModel
	contradiction *ContradictionScorer
	advisor       *AdvisorResolver
}

// NewEngine creates an engine
func NewEngine(store Store, clf classifier.Classifier, embedder embed.Engine) *Engine {
	return &Engine{
		market:        NewMarketModel(store, clf),
		contradiction: NewContradictionScorer(store, embedder),
		advisor:       NewAdvisorResolver(store),
	}
}

// Validate scores a post. Either every signal succeeds and a complete result
// is returned, or the first failure is returned and no result.
func (e *Engine) Validate(ctx context.Context, req Request) (*model.ValidationResult, error) {
	postDate, err := ParseRequestDate(req.Date)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.CompanyCategory) == "" {
		return nil, &model.InputError{Field: "company_category", Value: req.CompanyCategory, Reason: "must not be empty"}
	}

	var (
		market, contradiction, advisor Outcome
		probs                          []float64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		market, probs, err = e.market.Score(req.CompanyCategory)
		if err != nil {
			return fmt.Errorf("market/financial risk: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		contradiction, err = e.contradiction.Score(gctx, req.PostText, req.Company, postDate)
		if err != nil {
			return fmt.Errorf("contradiction score: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		advisor, err = e.advisor.Score(req.Company, req.AdvisorName)
		if err != nil {
			return fmt.Errorf("advisor risk: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	genuinity := Genuinity(market.Value, contradiction.Value, advisor.Value)
	verdict := VerdictFor(genuinity)

	return &model.ValidationResult{
		MarketFinancialRisk:    market.Value,
		MarketRowProbabilities: probs,
		ContradictionScore:     contradiction.Value,
		AdvisorRisk:            advisor.Value,
		GenuinityScore:         genuinity,
		Verdict:                verdict,
		VerdictText:            verdict.Message(),
		Signals: []model.Signal{
			signal(model.SignalMarketFinancial, WeightMarket, market, "Market/financial classifier probability"),
			signal(model.SignalContradiction, WeightContradiction, contradiction, "Contradiction with latest press release"),
			signal(model.SignalAdvisor, WeightAdvisor, advisor, "Advisor status risk"),
		},
	}, nil
}

func signal(t model.SignalType, weight float64, out Outcome, label string) model.Signal {
	desc := fmt.Sprintf("%s: %.2f", label, out.Value)
	if out.Fallback {
		desc = fmt.Sprintf("%s: %.2f (neutral default, %s)", label, out.Value, out.Reason)
	}
	return model.Signal{
		Type:        t,
		Severity:    model.SeverityFor(out.Value),
		Value:       out.Value,
		Weight:      weight,
		Fallback:    out.Fallback,
		Description: desc,
		Data:        out.Data,
	}
}

// ParseRequestDate parses a request date, reporting failures as invalid input
func ParseRequestDate(s string) (time.Time, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, &model.InputError{Field: "date", Value: s, Reason: err.Error()}
	}
	return d, nil
}

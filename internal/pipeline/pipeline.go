// Package pipeline wires configuration, reference data, the classifier and the
// embedding engine into a ready-to-use validator, and renders its reports.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/genuinity/internal/cache"
	"github.com/ppiankov/genuinity/internal/classifier"
	"github.com/ppiankov/genuinity/internal/embed"
	"github.com/ppiankov/genuinity/internal/metrics"
	"github.com/ppiankov/genuinity/internal/model"
	"github.com/ppiankov/genuinity/internal/refdata"
	"github.com/ppiankov/genuinity/internal/score"
	"github.com/rs/zerolog/log"
)

// Pipeline is the process-wide validation handle. It is built once at startup,
// never mutated, and safe for concurrent use.
type Pipeline struct {
	store      *refdata.Store
	classifier classifier.Classifier
	embedder   embed.Engine
	engine     *score.Engine
	renderer   *Renderer
	metrics    *metrics.Registry
	config     *model.Config
}

// NewPipeline loads every required resource. Any missing table or artifact is
// a fatal load error and no pipeline is returned. reg may be nil.
func NewPipeline(cfg *model.Config, reg *metrics.Registry) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := refdata.Load(cfg.Data)
	if err != nil {
		return nil, err
	}

	clf, err := classifier.Load(cfg.Classifier.Path)
	if err != nil {
		return nil, err
	}

	embedder, err := embed.NewEngine(cfg.Embedding, embed.Options{
		Cache:  cache.NewFromConfig(cfg.Cache),
		OnHit:  reg.CacheHit,
		OnMiss: reg.CacheMiss,
	})
	if err != nil {
		return nil, &model.LoadError{Resource: "embedding model", Err: err}
	}

	log.Info().
		Str("classifier", clf.Name()).
		Int("features", len(clf.Features)).
		Str("embedding", embedder.Name()).
		Msg("Pipeline ready")

	return NewWithComponents(cfg, store, clf, embedder, reg), nil
}

// NewWithComponents assembles a pipeline from already-loaded parts
func NewWithComponents(cfg *model.Config, store *refdata.Store, clf classifier.Classifier, embedder embed.Engine, reg *metrics.Registry) *Pipeline {
	return &Pipeline{
		store:      store,
		classifier: clf,
		embedder:   embedder,
		engine:     score.NewEngine(store, clf, embedder),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		metrics:    reg,
		config:     cfg,
	}
}

// Validate scores one post from its five explicit inputs
func (p *Pipeline) Validate(ctx context.Context, req score.Request) (*model.ValidationResult, error) {
	start := time.Now()

	res, err := p.engine.Validate(ctx, req)
	if err != nil {
		p.metrics.ObserveError(err, time.Since(start))
		log.Debug().Err(err).Str("company", req.Company).Msg("Validation failed")
		return nil, err
	}

	p.metrics.ObserveResult(res, time.Since(start))
	log.Debug().
		Str("company", req.Company).
		Float64("genuinity", res.GenuinityScore).
		Str("verdict", string(res.Verdict)).
		Dur("elapsed", time.Since(start)).
		Msg("Validation complete")

	return res, nil
}

// ValidatePost resolves the post's company category when it is missing,
// validates it, and wraps the result in a report
func (p *Pipeline) ValidatePost(ctx context.Context, post model.PostRecord) (*model.Report, error) {
	category, err := p.ResolveCategory(post.Company, post.CompanyCategory)
	if err != nil {
		p.metrics.ObserveError(err, 0)
		return nil, err
	}
	post.CompanyCategory = category

	if post.Date.IsZero() {
		err := &model.InputError{Field: "date", Reason: "missing"}
		p.metrics.ObserveError(err, 0)
		return nil, err
	}

	res, err := p.Validate(ctx, score.Request{
		PostText:        post.Text,
		Company:         post.Company,
		Date:            post.Date.Format(time.DateOnly),
		CompanyCategory: category,
		AdvisorName:     post.AdvisorName,
	})
	if err != nil {
		return nil, err
	}

	return &model.Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Post:        post,
		Result:      *res,
	}, nil
}

// ResolveCategory returns category when set, otherwise the company's mapped category
func (p *Pipeline) ResolveCategory(company, category string) (string, error) {
	if c := strings.TrimSpace(category); c != "" {
		return c, nil
	}
	if c, ok := p.store.CategoryFor(company); ok && c != "" {
		return c, nil
	}
	return "", &model.InputError{Field: "company_category", Value: company, Reason: "not provided and no mapping for company"}
}

// CategoryFor resolves a company through the category map
func (p *Pipeline) CategoryFor(company string) (string, bool) {
	return p.store.CategoryFor(company)
}

// Stats returns reference table sizes
func (p *Pipeline) Stats() refdata.Stats {
	return p.store.Stats()
}

// ClassifierName identifies the market/financial model
func (p *Pipeline) ClassifierName() string {
	return p.classifier.Name()
}

// EmbeddingName identifies the embedding engine
func (p *Pipeline) EmbeddingName() string {
	return p.embedder.Name()
}

// Renderer returns the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// RenderReport writes the report to the requested outputs and prints a summary
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			log.Info().Str("path", jsonPath).Msg("Wrote JSON report")
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			log.Info().Str("path", mdPath).Msg("Wrote Markdown report")
		}
	}

	p.renderer.RenderSummary(report)

	return nil
}

package score

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ppiankov/genuinity/internal/embed"
	"github.com/ppiankov/genuinity/internal/model"
)

// ReleaseSource returns a company's press releases dated on or before a day, newest first
type ReleaseSource interface {
	PressReleasesFor(company string, onOrBefore time.Time) []model.PressRelease
}

// ContradictionScorer measures how far a post drifts from the company's latest press release
type ContradictionScorer struct {
	releases ReleaseSource
	engine   embed.Engine
}

// NewContradictionScorer creates a scorer over releases using engine for embeddings
func NewContradictionScorer(releases ReleaseSource, engine embed.Engine) *ContradictionScorer {
	return &ContradictionScorer{releases: releases, engine: engine}
}

// ContradictionFromSimilarity maps cosine similarity onto a risk in [0,1].
// Agreement (1) is risk 0, opposition (-1) is risk 1.
func ContradictionFromSimilarity(similarity float64) float64 {
	similarity = math.Max(-1, math.Min(1, similarity))
	return (1 - similarity) / 2
}

// Score compares postText with the most recent release on or before postDate.
// With no such release the neutral default is returned.
func (s *ContradictionScorer) Score(ctx context.Context, postText, company string, postDate time.Time) (Outcome, error) {
	return withFallback(model.SignalContradiction, NeutralRisk, func() (Outcome, error) {
		releases := s.releases.PressReleasesFor(company, postDate)
		if len(releases) == 0 {
			return Outcome{}, noData("no press release on or before post date", map[string]interface{}{
				"company":   company,
				"post_date": postDate.Format(time.DateOnly),
			})
		}
		latest := releases[0]

		postVec, releaseVec, err := s.embedPair(ctx, postText, latest.Text)
		if err != nil {
			return Outcome{}, err
		}

		sim, err := embed.CosineSimilarity(postVec, releaseVec)
		if err != nil {
			return Outcome{}, &model.InferenceError{Stage: "embedding", Err: err}
		}

		return Outcome{
			Value: ContradictionFromSimilarity(sim),
			Data: map[string]interface{}{
				"company":      company,
				"release_date": latest.Date.Format(time.DateOnly),
				"release_row":  latest.Row,
				"similarity":   sim,
				"engine":       s.engine.Name(),
				"formula":      "(1 - cosine_similarity) / 2",
			},
		}, nil
	})
}

// embedPair embeds both texts. Blank text is never sent to the engine; it becomes
// a zero vector, whose similarity to anything is 0.
func (s *ContradictionScorer) embedPair(ctx context.Context, postText, releaseText string) ([]float32, []float32, error) {
	var postVec, releaseVec []float32
	var err error

	if strings.TrimSpace(postText) != "" {
		if postVec, err = s.engine.Embed(ctx, postText); err != nil {
			return nil, nil, &model.InferenceError{Stage: "embedding", Err: fmt.Errorf("post text: %w", err)}
		}
	}
	if strings.TrimSpace(releaseText) != "" {
		if releaseVec, err = s.engine.Embed(ctx, releaseText); err != nil {
			return nil, nil, &model.InferenceError{Stage: "embedding", Err: fmt.Errorf("press release: %w", err)}
		}
	}

	switch {
	case postVec == nil && releaseVec == nil:
		return []float32{0}, []float32{0}, nil
	case postVec == nil:
		postVec = make([]float32, len(releaseVec))
	case releaseVec == nil:
		releaseVec = make([]float32, len(postVec))
	}
	return postVec, releaseVec, nil
}

package worker

import (
	"context"
	"fmt"

	"github.com/ppiankov/genuinity/internal/model"
	"github.com/ppiankov/genuinity/internal/refdata"
)

// Validator scores a single post
type Validator interface {
	ValidatePost(ctx context.Context, post model.PostRecord) (*model.Report, error)
}

// ValidateJob scores one post of a batch
type ValidateJob struct {
	Index     int
	Post      model.PostRecord
	Validator Validator
}

// Execute executes the validation job
func (j *ValidateJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &ValidateResult{Index: j.Index, Post: j.Post, Error: err}
	}
	report, err := j.Validator.ValidatePost(ctx, j.Post)
	if err != nil {
		return &ValidateResult{Index: j.Index, Post: j.Post, Error: err}
	}
	return &ValidateResult{Index: j.Index, Post: j.Post, Report: report}
}

// ValidateResult is the outcome for one post
type ValidateResult struct {
	Index  int              `json:"index"`
	Post   model.PostRecord `json:"post"`
	Report *model.Report    `json:"report,omitempty"`
	Error  error            `json:"-"`
}

// GetError returns the error from the validation result
func (r *ValidateResult) GetError() error {
	return r.Error
}

// BatchProcessor validates many posts concurrently
type BatchProcessor struct {
	validator   Validator
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(validator Validator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		validator:   validator,
		concurrency: concurrency,
	}
}

// ProcessPosts validates every post and returns results in input order.
// Posts skipped because ctx was cancelled are reported with ctx's error.
func (b *BatchProcessor) ProcessPosts(ctx context.Context, posts []model.PostRecord) []*ValidateResult {
	if len(posts) == 0 {
		return []*ValidateResult{}
	}

	jobs := make([]Job, len(posts))
	for i, post := range posts {
		jobs[i] = &ValidateJob{Index: i, Post: post, Validator: b.validator}
	}

	out := make([]*ValidateResult, len(posts))
	for _, r := range Run(ctx, b.concurrency, jobs) {
		vr := r.(*ValidateResult)
		out[vr.Index] = vr
	}

	for i := range out {
		if out[i] == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &ValidateResult{Index: i, Post: posts[i], Error: err}
		}
	}

	return out
}

// ProcessFile reads a posts CSV and validates every row
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ValidateResult, error) {
	posts, err := refdata.LoadPosts(filePath)
	if err != nil {
		return nil, fmt.Errorf("read posts: %w", err)
	}

	return b.ProcessPosts(ctx, posts), nil
}

package embed

import (
	"context"
	"fmt"

	"github.com/ppiankov/genuinity/internal/worker"
)

// LimitedEngine throttles calls to a remote backend through a shared limiter
type LimitedEngine struct {
	inner   Engine
	limiter *worker.Limiter
	key     string
}

// NewLimitedEngine throttles inner on the limiter bucket named key
func NewLimitedEngine(inner Engine, limiter *worker.Limiter, key string) *LimitedEngine {
	return &LimitedEngine{inner: inner, limiter: limiter, key: key}
}

// Name returns the wrapped engine's name
func (e *LimitedEngine) Name() string {
	return e.inner.Name()
}

// Embed waits for a token, then calls the wrapped engine
func (e *LimitedEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx, e.key); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return e.inner.Embed(ctx, text)
}

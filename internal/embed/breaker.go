package embed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BreakerEngine stops calling a failing backend for a cool-down period.
// While open, Embed fails fast with gobreaker.ErrOpenState.
type BreakerEngine struct {
	inner Engine
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerEngine trips after maxFailures consecutive failures and lets one trial request through after timeout
func NewBreakerEngine(inner Engine, maxFailures uint32, timeout time.Duration) *BreakerEngine {
	if maxFailures == 0 {
		maxFailures = 5
	}

	st := gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// The caller giving up says nothing about backend health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("engine", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Embedding circuit breaker state changed")
		},
	}

	return &BreakerEngine{inner: inner, cb: gobreaker.NewCircuitBreaker(st)}
}

// Name returns the wrapped engine's name
func (e *BreakerEngine) Name() string {
	return e.inner.Name()
}


// Embed runs the wrapped call through the breaker
func (e *BreakerEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.cb.Execute(func() (interface{}, error) {
		return e.inner.Embed(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return out.([]float32), nil
}

// Package embed turns text into semantic vectors for the contradiction scorer.
// Remote backends (OpenAI-compatible, Ollama) are wrapped with rate limiting, a
// circuit breaker, and a cache; the hash backend runs offline.
package embed

import (
	"context"
	"fmt"
	"math"
)

// Engine generates a vector embedding for text.
// Implementations must be safe for concurrent use and deterministic for a fixed model.
type Engine interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Name identifies the backend and model, e.g. "ollama:nomic-embed-text"
	Name() string
}

// CosineSimilarity returns the cosine of the angle between a and b, in [-1, 1].
// A zero-magnitude vector has similarity 0 with everything.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}

	var dot, aMag, bMag float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		aMag += x * x
		bMag += y * y
	}

	if aMag == 0 || bMag == 0 {
		return 0, nil
	}

	sim := dot / math.Sqrt(aMag*bMag)
	return math.Max(-1, math.Min(1, sim)), nil
}

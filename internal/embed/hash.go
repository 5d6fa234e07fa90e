package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashEngine embeds text offline by feature-hashing lowercase word unigrams and
// bigrams into a fixed number of signed buckets, then L2-normalising.
// It captures lexical overlap only, but it is deterministic and needs no server.
type HashEngine struct {
	dims int
}

// NewHashEngine creates a hash engine with the given dimensionality
func NewHashEngine(dims int) (*HashEngine, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("hash embedding dimensions must be positive, got %d", dims)
	}
	return &HashEngine{dims: dims}, nil
}

// Name returns the engine name
func (e *HashEngine) Name() string {
	return fmt.Sprintf("hash:%d", e.dims)
}

// Embed never fails; empty text yields the zero vector
func (e *HashEngine) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float64, e.dims)

	tokens := tokenize(text)
	for i, tok := range tokens {
		e.add(vec, tok, 1)
		if i > 0 {
			e.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}

	out := make([]float32, e.dims)
	if norm == 0 {
		return out, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

func (e *HashEngine) add(vec []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	idx := int(sum % uint64(e.dims))
	// High bit picks the sign so collisions tend to cancel rather than pile up
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

package embed

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ppiankov/genuinity/internal/cache"
	"github.com/rs/zerolog/log"
)

// CachedEngine memoises embeddings per (engine name, text).
// Cache failures are logged and never fail an Embed call.
type CachedEngine struct {
	inner Engine
	cache cache.Cache
	ttl   time.Duration

	// Optional hooks for metrics
	OnHit  func()
	OnMiss func()
}

// NewCachedEngine wraps inner with c. A nil cache returns inner unchanged.
func NewCachedEngine(inner Engine, c cache.Cache, ttl time.Duration) Engine {
	if c == nil {
		return inner
	}
	return &CachedEngine{inner: inner, cache: c, ttl: ttl}
}

// Name returns the wrapped engine's name
func (e *CachedEngine) Name() string {
	return e.inner.Name()
}

// Embed returns the cached vector or computes and stores it
func (e *CachedEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key("embedding", e.inner.Name(), text)

	if data, ok := e.cache.Get(key); ok {
		if vec, err := decodeVector(data); err == nil {
			if e.OnHit != nil {
				e.OnHit()
			}
			return vec, nil
		}
		log.Debug().Str("engine", e.inner.Name()).Msg("Discarding malformed cached embedding")
		_ = e.cache.Delete(key)
	}

	if e.OnMiss != nil {
		e.OnMiss()
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := e.cache.Set(key, encodeVector(vec), e.ttl); err != nil {
		log.Warn().Err(err).Str("engine", e.inner.Name()).Msg("Failed to cache embedding")
	}
	return vec, nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("cached vector has %d bytes, not a multiple of 4", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return vec, nil
}

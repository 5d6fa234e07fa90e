package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/genuinity/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestObserveResult(t *testing.T) {
	r := New()

	r.ObserveResult(&model.ValidationResult{
		GenuinityScore: 0.5,
		Verdict:        model.VerdictModerate,
		Signals: []model.Signal{
			{Type: model.SignalMarketFinancial},
			{Type: model.SignalContradiction, Fallback: true},
			{Type: model.SignalAdvisor, Fallback: true},
		},
	}, 20*time.Millisecond)

	assert.Equal(t, 1.0, value(t, r.Validations.WithLabelValues("moderate")))
	assert.Equal(t, 0.0, value(t, r.Validations.WithLabelValues("high")))
	assert.Equal(t, 1.0, value(t, r.Fallbacks.WithLabelValues(string(model.SignalContradiction))))
	assert.Equal(t, 0.0, value(t, r.Fallbacks.WithLabelValues(string(model.SignalMarketFinancial))))
}

func TestObserveError(t *testing.T) {
	r := New()

	r.ObserveError(&model.InputError{Field: "date", Value: "x", Reason: "bad"}, time.Millisecond)
	r.ObserveError(fmt.Errorf("wrapped: %w", &model.InferenceError{Stage: "embedding", Err: errors.New("down")}), time.Millisecond)
	r.ObserveError(errors.New("other"), time.Millisecond)

	assert.Equal(t, 1.0, value(t, r.ValidationErrors.WithLabelValues("invalid_input")))
	assert.Equal(t, 1.0, value(t, r.ValidationErrors.WithLabelValues("model_inference")))
	assert.Equal(t, 1.0, value(t, r.ValidationErrors.WithLabelValues("internal")))
}

func TestNilRegistryIsSafe(t *testing.T) {
	var r *Registry
	r.ObserveResult(&model.ValidationResult{}, time.Second)
	r.ObserveError(errors.New("x"), time.Second)
	r.CacheHit()
	r.CacheMiss()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestHandler(t *testing.T) {
	r := New()
	r.CacheHit()
	r.CacheMiss()
	r.CacheMiss()

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, "genuinity_embedding_cache_hits_total 1"))
	assert.True(t, strings.Contains(text, "genuinity_embedding_cache_misses_total 2"))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "fatal_load", ErrorKind(&model.LoadError{Resource: "advisors", Err: errors.New("missing")}))
}

package model

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"2024-03-15",
		" 2024-03-15 ",
		"2024-03-15T09:30:00Z",
		"2024-03-15 23:59:59",
		"2024/03/15",
	} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%q parsed to %v", in, got)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "15/03/2024", "yesterday", "2024-13-01"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestNormalizeAdvisorName(t *testing.T) {
	assert.Equal(t, AdvisorNone, NormalizeAdvisorName(nil))
	assert.Equal(t, "Jane Roe", NormalizeAdvisorName(StringPtr("Jane Roe")))
	assert.Equal(t, "", NormalizeAdvisorName(StringPtr("")))
}

func TestErrorKinds(t *testing.T) {
	loadErr := fmt.Errorf("startup: %w", &LoadError{Resource: "advisors", Path: "a.csv", Err: errors.New("no such file")})
	assert.ErrorIs(t, loadErr, ErrFatalLoad)
	assert.NotErrorIs(t, loadErr, ErrInvalidInput)
	assert.Contains(t, loadErr.Error(), "advisors (a.csv)")

	inputErr := &InputError{Field: "date", Value: "bogus", Reason: "unrecognized"}
	assert.ErrorIs(t, inputErr, ErrInvalidInput)

	cause := errors.New("timeout")
	inferErr := fmt.Errorf("validate: %w", &InferenceError{Stage: "embedding", Err: cause})
	assert.ErrorIs(t, inferErr, ErrModelInference)
	assert.ErrorIs(t, inferErr, cause)
}

func TestVerdictMessagesDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, v := range []Verdict{VerdictHigh, VerdictModerate, VerdictLow} {
		msg := v.Message()
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "duplicate message %q", msg)
		seen[msg] = true
	}
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, SeverityCritical, SeverityFor(0.9))
	assert.Equal(t, SeverityWarning, SeverityFor(0.65))
	assert.Equal(t, SeverityWarning, SeverityFor(0.5))
	assert.Equal(t, SeverityInfo, SeverityFor(0.4))
	assert.Equal(t, SeverityInfo, SeverityFor(0.1))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Embedding.Provider = "word2vec"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Concurrency.Workers = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Data.Dir = ""
	assert.Error(t, cfg.Validate())
	cfg.Data.SQLitePath = "ref.db"
	assert.NoError(t, cfg.Validate())
}

func TestTablePath(t *testing.T) {
	d := DataConfig{Dir: "data"}
	assert.Equal(t, "data/advisors.csv", d.TablePath("advisors.csv"))
	assert.Equal(t, "/abs/advisors.csv", d.TablePath("/abs/advisors.csv"))
	assert.Equal(t, "", d.TablePath(""))
}

func TestParseDate_KeepsWrittenCalendarDate(t *testing.T) {
	got, err := ParseDate("2024-03-01T23:30:00-05:00")
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Equal(got), "got %v", got)
	assert.Equal(t, time.UTC, got.Location())

	got, err = ParseDate("2024-03-02T00:30:00+09:00")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Day())
}

func TestEmbeddingConfig_ModelName(t *testing.T) {
	cfg := DefaultConfig().Embedding
	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "all-minilm", cfg.ModelName())

	cfg.Provider = "OpenAI"
	assert.Equal(t, "text-embedding-3-small", cfg.ModelName())

	cfg.Provider = "hash"
	assert.Equal(t, "", cfg.ModelName())

	cfg.Model = "nomic-embed-text"
	assert.Equal(t, "nomic-embed-text", cfg.ModelName())
}

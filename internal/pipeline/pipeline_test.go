package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/genuinity/internal/metrics"
	"github.com/ppiankov/genuinity/internal/model"
	"github.com/ppiankov/genuinity/internal/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

// testConfig writes a complete data directory and classifier artifact.
// The classifier has a zero coefficient and an intercept of ln(4), so every
// row scores exactly 0.8.
func testConfig(t *testing.T) *model.Config {
	t.Helper()
	dir := t.TempDir()

	writeFixture(t, dir, "press.csv", `company,date,press_release_text
Acme,2024-03-01,Acme confirms merger talks with Globex.
`)
	writeFixture(t, dir, "advisors.csv", `company,date,advisor_name,advisor_status
Acme,2024-01-01,Jane Roe,Active
Initech,2024-01-01,Jane Roe,Active
Initech,2024-01-01,Rick Vale,Revoked
`)
	writeFixture(t, dir, "features.csv", `company_cat,date,volume
tech,2024-01-01,1.5
energy,2024-01-01,3.0
`)
	writeFixture(t, dir, "categories.csv", `company,company_cat
Acme,tech
Initech,energy
`)
	writeFixture(t, dir, "model.json", `{
  "name": "market-financial-test",
  "features": ["volume"],
  "coefficients": [0],
  "intercept": 1.3862943611198906
}`)

	cfg := model.DefaultConfig()
	cfg.Data = model.DataConfig{
		Dir:           dir,
		PressReleases: "press.csv",
		Advisors:      "advisors.csv",
		Features:      "features.csv",
		CategoryMap:   "categories.csv",
	}
	cfg.Classifier.Path = filepath.Join(dir, "model.json")
	cfg.Embedding.Provider = "hash"
	cfg.Embedding.Dimensions = 128
	cfg.Cache = model.CacheConfig{Enabled: true, MemoryTTL: time.Minute}
	return cfg
}

func TestNewPipeline_EndToEnd(t *testing.T) {
	reg := metrics.New()
	p, err := NewPipeline(testConfig(t), reg)
	require.NoError(t, err)

	res, err := p.Validate(context.Background(), score.Request{
		PostText:        "Initech is being acquired tomorrow, buy now",
		Company:         "Initech",
		Date:            "2024-04-02",
		CompanyCategory: "energy",
		AdvisorName:     model.StringPtr("Jane Roe"),
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.8, res.MarketFinancialRisk, 1e-12)
	assert.Equal(t, 0.5, res.ContradictionScore)
	assert.Equal(t, 0.1, res.AdvisorRisk)
	assert.InDelta(t, 0.5, res.GenuinityScore, 1e-12)
	assert.Equal(t, model.VerdictModerate, res.Verdict)

	assert.Equal(t, "market-financial-test", p.ClassifierName())
	assert.Equal(t, "hash:128", p.EmbeddingName())
}

func TestNewPipeline_EncodedCategoryFeedsClassifier(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, cfg.Data.Dir, "features.csv", "company_cat,volume\n3,0.2\n")
	// logit = company_cat - 3 + ln(4) = ln(4) only when company_cat reaches the model
	writeFixture(t, cfg.Data.Dir, "model.json", `{
  "features": ["company_cat", "volume"],
  "coefficients": [1, 0],
  "intercept": -1.6137056388801094
}`)

	p, err := NewPipeline(cfg, nil)
	require.NoError(t, err)

	res, err := p.Validate(context.Background(), score.Request{
		PostText:        "Initech is being acquired tomorrow, buy now",
		Company:         "Initech",
		Date:            "2024-04-02",
		CompanyCategory: "3",
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.8, res.MarketFinancialRisk, 1e-12)
}

func TestNewPipeline_IdenticalTextHasNoContradiction(t *testing.T) {
	p, err := NewPipeline(testConfig(t), nil)
	require.NoError(t, err)

	res, err := p.Validate(context.Background(), score.Request{
		PostText:        "Acme confirms merger talks with Globex.",
		Company:         "Acme",
		Date:            "2024-03-01",
		CompanyCategory: "tech",
		AdvisorName:     model.StringPtr("Jane Roe"),
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.ContradictionScore, 1e-6)
}

func TestNewPipeline_MissingTableIsFatal(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Data.Dir, "features.csv")))

	p, err := NewPipeline(cfg, nil)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, model.ErrFatalLoad)
}

func TestNewPipeline_MissingClassifierIsFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Classifier.Path = filepath.Join(cfg.Data.Dir, "absent.json")

	_, err := NewPipeline(cfg, nil)
	assert.ErrorIs(t, err, model.ErrFatalLoad)
}

func TestNewPipeline_BadEmbeddingConfigIsFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Embedding.Provider = "openai"
	cfg.Embedding.APIKey = ""

	_, err := NewPipeline(cfg, nil)
	assert.ErrorIs(t, err, model.ErrFatalLoad)
}

func TestValidatePost_ResolvesCategory(t *testing.T) {
	p, err := NewPipeline(testConfig(t), nil)
	require.NoError(t, err)

	report, err := p.ValidatePost(context.Background(), model.PostRecord{
		Text:        "Insiders are dumping Initech",
		Company:     "Initech",
		Date:        time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		AdvisorName: model.StringPtr("Rick Vale"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "energy", report.Post.CompanyCategory)
	assert.Equal(t, 0.9, report.Result.AdvisorRisk)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestValidatePost_UnresolvableCategory(t *testing.T) {
	reg := metrics.New()
	p, err := NewPipeline(testConfig(t), reg)
	require.NoError(t, err)

	_, err = p.ValidatePost(context.Background(), model.PostRecord{
		Text:    "Hooli to the moon",
		Company: "Hooli",
		Date:    time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestValidatePost_MissingDate(t *testing.T) {
	p, err := NewPipeline(testConfig(t), nil)
	require.NoError(t, err)

	_, err = p.ValidatePost(context.Background(), model.PostRecord{Text: "x", Company: "Acme"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestResolveCategory(t *testing.T) {
	p, err := NewPipeline(testConfig(t), nil)
	require.NoError(t, err)

	c, err := p.ResolveCategory("Acme", " retail ")
	require.NoError(t, err)
	assert.Equal(t, "retail", c, "explicit category wins")

	c, err = p.ResolveCategory("Acme", "")
	require.NoError(t, err)
	assert.Equal(t, "tech", c)

	_, err = p.ResolveCategory("Hooli", "")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestRenderer(t *testing.T) {
	p, err := NewPipeline(testConfig(t), nil)
	require.NoError(t, err)

	report, err := p.ValidatePost(context.Background(), model.PostRecord{
		Text:        "Acme | merger | done",
		Company:     "Acme",
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		AdvisorName: model.StringPtr("Jane Roe"),
	})
	require.NoError(t, err)

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out", "report.json")
	mdPath := filepath.Join(dir, "out", "report.md")

	var summary bytes.Buffer
	p.renderer = p.Renderer().WithOutput(&summary)
	require.NoError(t, p.RenderReport(report, jsonPath, mdPath, false))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded model.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.ID, decoded.ID)
	assert.Equal(t, report.Result.GenuinityScore, decoded.Result.GenuinityScore)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Genuinity Report: Acme")
	assert.Contains(t, string(md), report.Result.VerdictText)
	assert.Contains(t, string(md), "| advisor_risk |")
	assert.Contains(t, string(md), report.ID, "footer")

	assert.Contains(t, summary.String(), "Genuinity score:")
	assert.Contains(t, summary.String(), report.Result.VerdictText)
}

func TestRenderer_NoFooter(t *testing.T) {
	r := NewRenderer(false)
	md := r.Markdown(&model.Report{ID: "abc", Post: model.PostRecord{Company: "Acme"}})
	assert.NotContains(t, md, "abc")
}

func TestRenderer_JSONToStdout(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(true).WithOutput(&buf)
	require.NoError(t, r.RenderJSON(map[string]int{"n": 1}, "-"))
	assert.JSONEq(t, `{"n": 1}`, buf.String())
}

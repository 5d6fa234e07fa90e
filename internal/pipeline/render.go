package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/genuinity/internal/model"
)

// Renderer writes reports as JSON, Markdown, or a terminal summary
type Renderer struct {
	includeFooter bool
	out           io.Writer
}

// NewRenderer creates a renderer that prints summaries to stdout
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter, out: os.Stdout}
}

// WithOutput redirects summaries to w
func (r *Renderer) WithOutput(w io.Writer) *Renderer {
	return &Renderer{includeFooter: r.includeFooter, out: w}
}

// RenderJSON writes v as indented JSON to path, or to stdout when path is "-"
func (r *Renderer) RenderJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err := r.out.Write(data)
		return err
	}
	return writeFile(path, data)
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// Markdown formats a report
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder
	res := report.Result

	fmt.Fprintf(&b, "# Genuinity Report: %s\n\n", report.Post.Company)
	fmt.Fprintf(&b, "**Verdict:** %s\n\n", res.VerdictText)
	fmt.Fprintf(&b, "**Genuinity score:** %.3f (%s)\n\n", res.GenuinityScore, res.Verdict)

	b.WriteString("## Post\n\n")
	fmt.Fprintf(&b, "- Company: %s\n", report.Post.Company)
	fmt.Fprintf(&b, "- Category: %s\n", report.Post.CompanyCategory)
	fmt.Fprintf(&b, "- Date: %s\n", report.Post.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "- Advisor: %s\n\n", model.NormalizeAdvisorName(report.Post.AdvisorName))
	for _, line := range strings.Split(strings.TrimSpace(report.Post.Text), "\n") {
		fmt.Fprintf(&b, "> %s\n", line)
	}
	b.WriteString("\n")

	b.WriteString("## Signals\n\n")
	b.WriteString("| Signal | Value | Weight | Severity | Notes |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, s := range res.Signals {
		fmt.Fprintf(&b, "| %s | %.3f | %.1f | %s | %s |\n", s.Type, s.Value, s.Weight, s.Severity, escapeCell(s.Description))
	}
	b.WriteString("\n")

	if len(res.MarketRowProbabilities) > 1 {
		b.WriteString("## Market/financial distribution\n\n")
		for i, p := range res.MarketRowProbabilities {
			fmt.Fprintf(&b, "- row %d: %.3f\n", i+1, p)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		fmt.Fprintf(&b, "_Report %s generated %s. Scores are decision support, not a finding of fraud._\n",
			report.ID, report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	}

	return b.String()
}

// RenderSummary prints a short human-readable summary
func (r *Renderer) RenderSummary(report *model.Report) {
	res := report.Result

	fmt.Fprintf(r.out, "\n")
	fmt.Fprintf(r.out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(r.out, "  %s (%s)\n", report.Post.Company, report.Post.Date.Format("2006-01-02"))
	fmt.Fprintf(r.out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(r.out, "\n")
	fmt.Fprintf(r.out, "  Market/financial risk:  %.3f\n", res.MarketFinancialRisk)
	fmt.Fprintf(r.out, "  Contradiction score:    %.3f\n", res.ContradictionScore)
	fmt.Fprintf(r.out, "  Advisor risk:           %.3f\n", res.AdvisorRisk)
	fmt.Fprintf(r.out, "  Genuinity score:        %.3f\n", res.GenuinityScore)
	fmt.Fprintf(r.out, "\n")
	fmt.Fprintf(r.out, "  %s\n", res.VerdictText)
	fmt.Fprintf(r.out, "\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

package cli

import (
	"context"
	"fmt"

	"github.com/ppiankov/genuinity/internal/metrics"
	"github.com/ppiankov/genuinity/internal/model"
	"github.com/ppiankov/genuinity/internal/pipeline"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	postText     string
	postCompany  string
	postDate     string
	postCategory string
	postAdvisor  string
	jsonOut      string
	mdOut        string
	noFooter     bool
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Score a single post",
	Long: `Validate scores one social-media post against the reference data:
- Look up the company's category (unless --category is given)
- Run the market/financial classifier over the category's feature rows
- Compare the post with the latest press release on or before --date
- Look up the named advisor's regulatory status
- Combine the signals into a genuinity score and verdict

Example:
  genuinity validate --company Acme --date 2024-04-02 \
    --text "Acme will triple by Friday, insiders confirm"
  genuinity validate --company Acme --date 2024-04-02 --advisor "Jane Roe" \
    --text "..." --json report.json --md report.md`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	f := validateCmd.Flags()
	f.StringVar(&postText, "text", "", "post text")
	f.StringVar(&postCompany, "company", "", "company the post is about (required)")
	f.StringVar(&postDate, "date", "", "post date, YYYY-MM-DD (required)")
	f.StringVar(&postCategory, "category", "", "company category (default: looked up from the category map)")
	f.StringVar(&postAdvisor, "advisor", "", "advisor named in the post (omit when none)")
	f.StringVar(&jsonOut, "json", "", "write JSON report to this path (- for stdout)")
	f.StringVar(&mdOut, "md", "", "write Markdown report to this path")
	f.BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	_ = validateCmd.MarkFlagRequired("company")
	_ = validateCmd.MarkFlagRequired("date")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	date, err := model.ParseDate(postDate)
	if err != nil {
		return &model.InputError{Field: "date", Value: postDate, Reason: err.Error()}
	}

	post := model.PostRecord{
		Text:            postText,
		Company:         postCompany,
		Date:            date,
		CompanyCategory: postCategory,
	}
	// An empty --advisor is still a name; only an absent flag means "no advisor"
	if cmd.Flags().Changed("advisor") {
		post.AdvisorName = model.StringPtr(postAdvisor)
	}

	p, err := pipeline.NewPipeline(cfg, metrics.New())
	if err != nil {
		return err
	}

	report, err := p.ValidatePost(context.Background(), post)
	if err != nil {
		return fmt.Errorf("validate post: %w", err)
	}

	log.Debug().
		Str("id", report.ID).
		Float64("genuinity_score", report.Result.GenuinityScore).
		Str("verdict", string(report.Result.Verdict)).
		Msg("Post validated")

	return p.RenderReport(report, jsonOut, mdOut, cfg.Output.Verbose)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/genuinity/internal/metrics"
	"github.com/ppiankov/genuinity/internal/model"
	"github.com/ppiankov/genuinity/internal/pipeline"
	"github.com/ppiankov/genuinity/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	batchOut     string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [posts.csv]",
	Short: "Score every post in a CSV file in parallel",
	Long: `Batch scores a table of social posts concurrently:
- Read posts from a CSV with post_text, company, date and advisor_name columns
- Resolve each post's category from the company map
- Score posts in parallel with a configurable worker count
- Write all reports, in input order, as one JSON array

Without an argument the posts table from the data directory is used.

Example:
  genuinity batch
  genuinity batch posts.csv --concurrency 8 --out reports.json
  genuinity batch posts.csv --timeout 5m`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&batchOut, "out", "genuinity-batch.json", "output path for the JSON array of results (- for stdout)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

// batchEntry is one line of the batch output
type batchEntry struct {
	Index  int              `json:"index"`
	Post   model.PostRecord `json:"post"`
	Report *model.Report    `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	file := cfg.Data.TablePath(cfg.Data.Posts)
	if len(args) == 1 {
		file = args[0]
	}
	workers := cfg.Concurrency.Workers
	if concurrency > 0 {
		workers = concurrency
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Genuinity Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output:       %s\n", batchOut)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	p, err := pipeline.NewPipeline(cfg, metrics.New())
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	entries := make([]batchEntry, len(results))
	verdicts := make(map[model.Verdict]int)
	failures := 0
	for i, r := range results {
		entries[i] = batchEntry{Index: r.Index, Post: r.Post, Report: r.Report}
		if r.Error != nil {
			failures++
			entries[i].Error = r.Error.Error()
			fmt.Fprintf(os.Stderr, "✗ row %d (%s): %v\n", r.Index+1, r.Post.Company, r.Error)
			continue
		}
		verdicts[r.Report.Result.Verdict]++
	}

	if err := p.Renderer().WithOutput(cmd.OutOrStdout()).RenderJSON(entries, batchOut); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:      %d posts\n", len(results))
	fmt.Fprintf(os.Stderr, "  High:       %d\n", verdicts[model.VerdictHigh])
	fmt.Fprintf(os.Stderr, "  Moderate:   %d\n", verdicts[model.VerdictModerate])
	fmt.Fprintf(os.Stderr, "  Low:        %d\n", verdicts[model.VerdictLow])
	fmt.Fprintf(os.Stderr, "  Failures:   %d\n", failures)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

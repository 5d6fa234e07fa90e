package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/genuinity/internal/metrics"
	"github.com/ppiankov/genuinity/internal/pipeline"
	"github.com/ppiankov/genuinity/internal/server"
	"github.com/ppiankov/genuinity/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the validation HTTP API",
	Long: `Serve loads the reference data and models once and exposes them over HTTP:
  GET  /api/health
  POST /api/validate
  GET  /api/companies/:company/category
  GET  /metrics

Example:
  genuinity serve --addr :8090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	reg := metrics.New()
	p, err := pipeline.NewPipeline(cfg, reg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []server.Option
	if cfg.Server.RequestsPerSecond > 0 {
		opts = append(opts, server.WithClientLimit(worker.NewLimiter(cfg.Server.RequestsPerSecond, cfg.Server.Burst)))
	}

	return server.New(p, reg.Handler(), opts...).Run(ctx, cfg.Server.Addr)
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/genuinity/internal/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time
var Version = "v0.1.0"

// Maps embedding.model onto GENUINITY_EMBEDDING_MODEL
var envKeyReplacer = strings.NewReplacer(".", "_")

var (
	cfgFile string
	verbose bool
	logJSON bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "genuinity",
	Short: "Genuinity - fraud-risk scoring for market posts (decision support)",
	Long: `Genuinity scores how likely a social-media post about a company is a
fraudulent or unsubstantiated market claim.

It combines three signals into a weighted genuinity score:
  - market/financial risk from a pretrained classifier   (weight 0.4)
  - contradiction with the company's latest press release (weight 0.3)
  - the regulatory status of the named advisor            (weight 0.3)

Scores above 0.65 are high risk, above 0.4 moderate, otherwise low.
Genuinity supports a decision; it does not establish fraud.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Genuinity.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("genuinity %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.genuinity/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.BoolVar(&logJSON, "log-json", false, "emit logs as JSON lines")
	pf.String("data-dir", "", "directory holding the reference CSV tables")
	pf.String("sqlite", "", "SQLite database holding the reference tables (replaces --data-dir)")
	pf.String("classifier", "", "market/financial classifier artifact (.json or .yaml)")
	pf.String("embedding-provider", "", "embedding provider (hash, openai, ollama)")
	pf.String("embedding-model", "", "embedding model name")
	pf.String("embedding-url", "", "embedding API base URL")
	pf.Bool("no-cache", false, "disable the embedding cache")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("output.log_json", pf.Lookup("log-json"))
	_ = viper.BindPFlag("data.dir", pf.Lookup("data-dir"))
	_ = viper.BindPFlag("data.sqlite_path", pf.Lookup("sqlite"))
	_ = viper.BindPFlag("classifier.path", pf.Lookup("classifier"))
	_ = viper.BindPFlag("embedding.provider", pf.Lookup("embedding-provider"))
	_ = viper.BindPFlag("embedding.model", pf.Lookup("embedding-model"))
	_ = viper.BindPFlag("embedding.base_url", pf.Lookup("embedding-url"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".genuinity"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match GENUINITY_*, e.g. GENUINITY_EMBEDDING_PROVIDER
	viper.SetEnvPrefix("GENUINITY")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
	_ = viper.BindEnv("embedding.api_key", "GENUINITY_EMBEDDING_API_KEY", "OPENAI_API_KEY")

	readErr := viper.ReadInConfig()

	setupLogging(viper.GetBool("output.verbose"), viper.GetBool("output.log_json"))

	if readErr == nil {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("Using config file")
	} else if cfgFile != "" {
		log.Warn().Err(readErr).Str("file", cfgFile).Msg("Could not read config file")
	}
}

// setDefaults registers every config key so env vars and Unmarshal can see them
func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("data.dir", d.Data.Dir)
	v.SetDefault("data.sqlite_path", d.Data.SQLitePath)
	v.SetDefault("data.press_releases", d.Data.PressReleases)
	v.SetDefault("data.advisors", d.Data.Advisors)
	v.SetDefault("data.features", d.Data.Features)
	v.SetDefault("data.category_map", d.Data.CategoryMap)
	v.SetDefault("data.posts", d.Data.Posts)

	v.SetDefault("classifier.path", d.Classifier.Path)

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.base_url", d.Embedding.BaseURL)
	v.SetDefault("embedding.timeout", d.Embedding.Timeout)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("embedding.requests_per_second", d.Embedding.RequestsPerSecond)
	v.SetDefault("embedding.burst", d.Embedding.Burst)
	v.SetDefault("embedding.breaker_failures", d.Embedding.BreakerFailures)
	v.SetDefault("embedding.breaker_timeout", d.Embedding.BreakerTimeout)
	v.SetDefault("embedding.http_proxy", d.Embedding.HTTPProxy)
	v.SetDefault("embedding.https_proxy", d.Embedding.HTTPSProxy)
	v.SetDefault("embedding.no_proxy", d.Embedding.NoProxy)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	v.SetDefault("cache.disk_dir", d.Cache.DiskDir)
	v.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)

	v.SetDefault("concurrency.workers", d.Concurrency.Workers)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.requests_per_second", d.Server.RequestsPerSecond)
	v.SetDefault("server.burst", d.Server.Burst)

	v.SetDefault("output.verbose", d.Output.Verbose)
	v.SetDefault("output.log_json", d.Output.LogJSON)
	v.SetDefault("output.include_footer", d.Output.IncludeFooter)
}

// loadConfig resolves the effective configuration from flags, env, file, and defaults
func loadConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(verbose, asJSON bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if asJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// Package cmd implements the command-line interface: the HTTP server,
// one-shot reports and the CSV/Postgres import and export commands.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"realestate-insights/config"
	"realestate-insights/storage"
	"realestate-insights/utils"
)

var (
	// logLevel overrides LOG_LEVEL when set.
	logLevel string

	rootCmd = &cobra.Command{
		Use:          "realestate-insights",
		Short:        "Chart-ready statistics over real-estate listings",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from LOG_LEVEL)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newExportCmd())
}

// deps is what every subcommand needs before doing work.
type deps struct {
	cfg    *config.Config
	logger *utils.Logger
}

func loadDeps() (*deps, error) {
	cfg := config.Load()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := utils.NewLogger(cfg.LogLevel)
	if !cfg.EnvFileLoaded {
		logger.Debug("no .env file found, falling back to system env vars")
	}
	return &deps{cfg: cfg, logger: logger}, nil
}

func (d *deps) retry() *utils.RetryConfig {
	return &utils.RetryConfig{
		MaxAttempts: d.cfg.MaxRetries,
		BaseDelay:   time.Second,
		Logger:      d.logger,
	}
}

// openSource returns the configured fetch collaborator and a function
// releasing it.
func (d *deps) openSource(ctx context.Context) (storage.DatasetSource, func(), error) {
	noop := func() {}

	switch d.cfg.DataSource {
	case config.SourceCSV:
		src, err := storage.NewCSVSource(d.cfg.CSVInputPath)
		if err != nil {
			return nil, noop, err
		}
		d.logger.Info("serving %d offers from %s", len(src.Records()), d.cfg.CSVInputPath)
		return src, noop, nil

	case config.SourcePostgres:
		store, err := storage.NewPostgresStore(ctx, d.cfg.DSN(), d.retry())
		if err != nil {
			return nil, noop, fmt.Errorf("connect to postgres (is the database running?): %w", err)
		}
		return store, func() {
			if err := store.Close(); err != nil {
				d.logger.Warn("closing postgres: %v", err)
			}
		}, nil

	default:
		d.logger.Info("fetching from %s", d.cfg.APIBaseURL)
		return storage.NewHTTPClient(d.cfg.APIBaseURL, d.cfg.FetchTimeout()), noop, nil
	}
}

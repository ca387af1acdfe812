package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/rewards-staging/pkg/cleaner"
	"github.com/David-Botos/rewards-staging/pkg/config"
	"github.com/David-Botos/rewards-staging/pkg/connector"
	"github.com/David-Botos/rewards-staging/pkg/export"
	"github.com/David-Botos/rewards-staging/pkg/loader"
	"github.com/David-Botos/rewards-staging/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "staging",
		Short:         "Clean raw rewards exports and load them into staging tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "env file to seed the environment from")

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the raw receipts, brands and users exports",
		Long:  `The clean command reads the line-delimited raw exports from RAW_JSON_PATH and writes cleaned CSV and JSON files to CSV_PATH and CLEANED_JSON_PATH.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(envFile)
			if err != nil {
				return err
			}
			defer logger.Sync()

			return runClean(cmd.Context(), cfg, logger)
		},
	}

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Replace the staging tables with the cleaned JSON exports",
		Long:  `The load command reads the cleaned JSON exports from CLEANED_JSON_PATH and replaces the stg_brands, stg_items, stg_receipts and stg_users tables. A failing table does not stop the others.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(envFile)
			if err != nil {
				return err
			}
			defer logger.Sync()

			return runLoad(cmd.Context(), cfg, logger)
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Clean, then load",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(envFile)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := runClean(cmd.Context(), cfg, logger); err != nil {
				return err
			}
			return runLoad(cmd.Context(), cfg, logger)
		},
	}

	rootCmd.AddCommand(cleanCmd, loadCmd, runCmd)
	return rootCmd
}

func setup(envFile string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing logger: %w", err)
	}
	return cfg, logger, nil
}

func runClean(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.ValidateForClean(); err != nil {
		return err
	}

	policy, err := cleaner.ParseDedupPolicy(cfg.UserDedupPolicy)
	if err != nil {
		return err
	}

	sink := export.NewWriter(cfg.Paths.CSVPath, cfg.Paths.CleanedJSONPath)
	c, err := cleaner.NewDataCleaner(cfg.Paths.RawJSONPath, sink, logger.Named("cleaner"))
	if err != nil {
		return err
	}

	if _, err := c.WithDedupPolicy(policy).Run(ctx); err != nil {
		return fmt.Errorf("error cleaning exports: %w", err)
	}
	return nil
}

// runLoad logs load failures and swallows them so a scheduled run still
// exits cleanly. Only cancellation is returned.
func runLoad(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	report, err := load(ctx, cfg, logger)
	if report != nil {
		fmt.Print(report.String())
	}
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("load interrupted: %w", err)
	}
	logger.Error("Loading staging tables failed", zap.Error(err))
	return nil
}

func load(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*loader.Report, error) {
	if err := cfg.ValidateForLoad(); err != nil {
		return nil, err
	}

	factory := connector.NewConnectorFactory(cfg.Database, logger)
	conn, err := factory.CreateConnector(ctx)
	if err != nil {
		return nil, fmt.Errorf("error connecting to staging database: %w", err)
	}
	defer conn.Close()

	l, err := loader.New(conn, cfg.Paths.CleanedJSONPath, logger.Named("loader"))
	if err != nil {
		return nil, err
	}
	return l.WithBatchSize(cfg.LoadBatchSize).Run(ctx)
}

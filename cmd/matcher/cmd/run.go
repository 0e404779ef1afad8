package cmd

import (
	"fmt"

	"github.com/listingmatch/backend/config"
	"github.com/listingmatch/backend/internal/infrastructure/jsonl"
	"github.com/listingmatch/backend/internal/infrastructure/remote"
	"github.com/listingmatch/backend/internal/logger"
	"github.com/listingmatch/backend/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Match listings to products and write the results file",
		Long: "Loads the products and listings sources, matches every listing to at most one\n" +
			"product and writes one JSON object per product to the results file.\n" +
			"Malformed input lines are skipped; an unreadable source aborts the run.",
		Args: cobra.NoArgs,
		RunE: runMatch,
	}

	f := cmd.Flags()
	f.String("listings", "", "listings source (path or http(s) URL)")
	f.String("results", "", "results destination path")
	f.String("listings-format", "", "listing serialization in results: objects or titles")
	f.Int("sample-size", 0, "number of loaded records to log at debug level")
	return cmd
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	store := jsonl.NewStore(newFetcher(cfg, log), log)
	matcher := usecase.NewMatchingService(log, usecase.MatchConfig{
		EnableDebugLogging: logger.ParseLevel(cfg.Log.Level) == zapcore.DebugLevel,
	})
	runner := usecase.NewRunner(store, store, matcher, log)

	summary, err := runner.Run(cmd.Context(), usecase.RunConfig{
		ProductsSource: cfg.Input.Products,
		ListingsSource: cfg.Input.Listings,
		ResultsPath:    cfg.Output.Results,
		ListingsFormat: cfg.Output.Listings,
		SampleSize:     cfg.Output.SampleSize,
	})
	if err != nil {
		log.Error("run failed", logger.Error(err))
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Matched %d out of %d listings (%d ambiguous), results in %s\n",
		summary.Report.Matched, summary.ListingCount, summary.Report.Ambiguous, summary.ResultsPath)
	return nil
}

func newFetcher(cfg *config.Config, log logger.Logger) *remote.Client {
	return remote.NewClient(remote.Config{
		Timeout:       cfg.Remote.Timeout,
		Retries:       cfg.Remote.Retries,
		RatePerSecond: cfg.Remote.RatePerSecond,
	}, log)
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/listingmatch/backend/config"
	"github.com/listingmatch/backend/internal/logger"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the matcher command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "matcher",
		Short: "Assign product listings to catalog products",
		Long: "Matches free-text product listings against a catalog of canonical products\n" +
			"by keyword intersection and writes every product with its matched listings.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: matcher.yaml in ., ./config or /etc/listingmatch)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("products", "", "products source (path or http(s) URL)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())
	return root
}

// Execute runs the root command. Any returned error means the process should exit non-zero.
func Execute(ctx context.Context) error {
	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

// loadConfig resolves configuration for cmd, honouring its flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadWithFlags(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from configuration.
func newLogger(cfg *config.Config) (logger.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/listingmatch/backend/config"
	httpDelivery "github.com/listingmatch/backend/internal/delivery/http"
	"github.com/listingmatch/backend/internal/infrastructure/cache"
	"github.com/listingmatch/backend/internal/infrastructure/jsonl"
	"github.com/listingmatch/backend/internal/logger"
	"github.com/listingmatch/backend/internal/usecase"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve read-only listing resolution over HTTP",
		Long: "Loads the products source once, indexes it, and answers resolution queries\n" +
			"for single listings. Served lookups never modify the catalog.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("port", "", "HTTP listen port")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	store := jsonl.NewStore(newFetcher(cfg, log), log)
	products, stats, err := store.ReadProducts(ctx, cfg.Input.Products)
	if err != nil {
		log.Error("loading products failed", logger.Error(err))
		return err
	}
	log.Info("products loaded",
		logger.String("source", cfg.Input.Products),
		logger.Int("count", len(products)),
		logger.Int("dropped", stats.Dropped),
	)

	memoryCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)
	defer memoryCache.Close()

	lookup := usecase.NewLookupService(
		usecase.NewCatalog(products),
		memoryCache,
		usecase.LookupConfig{CacheTTL: cfg.Cache.TTL},
		log,
	)
	router := httpDelivery.SetupRouter(cfg, httpDelivery.NewHandler(lookup), log)

	return serveUntilDone(ctx, cfg, router, log)
}

func serveUntilDone(ctx context.Context, cfg *config.Config, handler http.Handler, log logger.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			logger.String("addr", srv.Addr),
			logger.String("environment", cfg.Server.Environment),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/listingmatch/backend/internal/domain"
	"github.com/listingmatch/backend/internal/logger"
)

// Listing output formats.
const (
	ListingsAsObjects = "objects"
	ListingsAsTitles  = "titles"
)

// RunConfig names the sources and destination of a batch run
type RunConfig struct {
	ProductsSource string
	ListingsSource string
	ResultsPath    string
	ListingsFormat string
	SampleSize     int
}

// RunSummary describes a completed batch run
type RunSummary struct {
	Products     domain.LoadStats
	Listings     domain.LoadStats
	ProductCount int
	ListingCount int
	Report       *MatchReport
	ResultsPath  string
	Duration     time.Duration
}

// Runner drives a full batch: load, match, write.
type Runner struct {
	reader  domain.RecordReader
	writer  domain.ResultWriter
	matcher *MatchingService
	logger  logger.Logger
}

// NewRunner creates a new batch runner with dependencies
func NewRunner(
	reader domain.RecordReader,
	writer domain.ResultWriter,
	matcher *MatchingService,
	log logger.Logger,
) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{
		reader:  reader,
		writer:  writer,
		matcher: matcher,
		logger:  log,
	}
}

// Run executes every phase in order and stops at the first fatal error.
// Errors keep their domain sentinel so the caller can decide how to exit.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (*RunSummary, error) {
	start := time.Now()

	products, productStats, err := r.reader.ReadProducts(ctx, cfg.ProductsSource)
	if err != nil {
		return nil, fmt.Errorf("reading products: %w", err)
	}
	r.logger.Info("products loaded",
		logger.String("source", cfg.ProductsSource),
		logger.Int("count", len(products)),
		logger.Int("dropped", productStats.Dropped),
	)
	for _, p := range sample(products, cfg.SampleSize) {
		r.logger.Debug("product sample", logger.Any("product", p))
	}

	listings, listingStats, err := r.reader.ReadListings(ctx, cfg.ListingsSource)
	if err != nil {
		return nil, fmt.Errorf("reading listings: %w", err)
	}
	r.logger.Info("listings loaded",
		logger.String("source", cfg.ListingsSource),
		logger.Int("count", len(listings)),
		logger.Int("dropped", listingStats.Dropped),
	)
	for _, l := range sample(listings, cfg.SampleSize) {
		r.logger.Debug("listing sample", logger.Any("listing", l))
	}

	catalog := NewCatalog(products)
	report, err := r.matcher.Match(ctx, catalog, listings)
	if err != nil {
		return nil, fmt.Errorf("matching listings: %w", err)
	}
	r.logger.Info("listings matched",
		logger.Int("matched", report.Matched),
		logger.Int("listings", report.Listings),
		logger.Int("ambiguous", report.Ambiguous),
		logger.Int("unmatched", report.Unmatched+report.NoKeywords),
		logger.Int("elimination_keywords", len(report.Eliminations)),
	)
	r.logger.Debug("top elimination keywords", logger.Any("keywords", report.TopEliminations(10)))

	if err := r.writeResults(ctx, cfg, catalog.Products()); err != nil {
		return nil, fmt.Errorf("writing results: %w", err)
	}

	summary := &RunSummary{
		Products:     productStats,
		Listings:     listingStats,
		ProductCount: len(products),
		ListingCount: len(listings),
		Report:       report,
		ResultsPath:  cfg.ResultsPath,
		Duration:     time.Since(start),
	}
	r.logger.Info("results written",
		logger.String("path", cfg.ResultsPath),
		logger.Duration("elapsed", summary.Duration),
	)
	return summary, nil
}

func (r *Runner) writeResults(ctx context.Context, cfg RunConfig, products []domain.Product) error {
	switch cfg.ListingsFormat {
	case ListingsAsTitles:
		results := make([]domain.ProductTitles, 0, len(products))
		for _, p := range products {
			results = append(results, domain.NewProductTitles(p))
		}
		return r.writer.WriteTitles(ctx, cfg.ResultsPath, results)
	case ListingsAsObjects, "":
		results := make([]domain.ProductResult, 0, len(products))
		for _, p := range products {
			results = append(results, domain.NewProductResult(p))
		}
		return r.writer.WriteResults(ctx, cfg.ResultsPath, results)
	default:
		return fmt.Errorf("%w: unknown listings format %q", domain.ErrInvalidRequest, cfg.ListingsFormat)
	}
}

func sample[T any](records []T, n int) []T {
	if n <= 0 {
		return nil
	}
	if len(records) < n {
		return records
	}
	return records[:n]
}

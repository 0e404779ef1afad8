package jsonl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/listingmatch/backend/internal/domain"
	"github.com/listingmatch/backend/internal/logger"
)

// Store loads products and listings from path-like sources and writes results.
// Sources starting with http:// or https:// are read through the fetcher.
type Store struct {
	fetcher domain.SourceFetcher
	logger  logger.Logger
}

// NewStore creates a store. fetcher may be nil when only local files are used.
func NewStore(fetcher domain.SourceFetcher, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{fetcher: fetcher, logger: log}
}

// IsRemote reports whether source names an HTTP(S) resource.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Open opens source for reading.
func (s *Store) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	if IsRemote(source) {
		if s.fetcher == nil {
			return nil, fmt.Errorf("%w: no fetcher configured for %s", domain.ErrSourceUnreadable, source)
		}
		rc, err := s.fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnreadable, err)
		}
		return rc, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnreadable, err)
	}
	return f, nil
}

// ReadProducts loads products from source.
func (s *Store) ReadProducts(ctx context.Context, source string) ([]domain.Product, domain.LoadStats, error) {
	return readSource[domain.Product](ctx, s, source)
}

// ReadListings loads listings from source.
func (s *Store) ReadListings(ctx context.Context, source string) ([]domain.Listing, domain.LoadStats, error) {
	return readSource[domain.Listing](ctx, s, source)
}

// WriteResults writes full product results to path.
func (s *Store) WriteResults(ctx context.Context, path string, results []domain.ProductResult) error {
	return WriteFile(path, results)
}

// WriteTitles writes title-only product results to path.
func (s *Store) WriteTitles(ctx context.Context, path string, results []domain.ProductTitles) error {
	return WriteFile(path, results)
}

func readSource[T any](ctx context.Context, s *Store, source string) ([]T, domain.LoadStats, error) {
	rc, err := s.Open(ctx, source)
	if err != nil {
		return nil, domain.LoadStats{}, err
	}
	defer rc.Close()

	log := s.logger.With(logger.String("source", source))
	return ReadRecords[T](rc, func(line int, err error) {
		log.Debug("dropping malformed line", logger.Int("line", line), logger.Error(err))
	})
}

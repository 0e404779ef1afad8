package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/listingmatch/backend/internal/domain"
	"github.com/listingmatch/backend/internal/logger"
)

// LookupConfig holds configuration for the lookup service
type LookupConfig struct {
	CacheTTL time.Duration
}

// ResolvedListing is a resolution enriched with product names for display.
type ResolvedListing struct {
	Title               string         `json:"title"`
	Outcome             domain.Outcome `json:"outcome"`
	ProductName         string         `json:"product_name,omitempty"`
	Candidates          []string       `json:"candidates"`
	EliminationKeywords []string       `json:"elimination_keywords,omitempty"`
	Cached              bool           `json:"cached"`
}

// IndexStats describes the index served by a LookupService.
type IndexStats struct {
	Products int `json:"products"`
	Keywords int `json:"keywords"`
}

// LookupService answers read-only resolution queries against a fixed catalog.
// It never attaches listings.
type LookupService struct {
	catalog  *Catalog
	index    *InvertedIndex
	resolver *Resolver
	cache    domain.ResolutionCache
	cacheTTL time.Duration
	logger   logger.Logger
}

// NewLookupService indexes catalog and creates a lookup service over it.
// cache may be nil to disable memoization.
func NewLookupService(
	catalog *Catalog,
	cache domain.ResolutionCache,
	config LookupConfig,
	log logger.Logger,
) *LookupService {
	if log == nil {
		log = logger.NewNop()
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	index := catalog.BuildIndex()
	return &LookupService{
		catalog:  catalog,
		index:    index,
		resolver: NewResolver(index),
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// Resolve resolves a single listing.
// Flow: check cache -> resolve against index -> cache -> return
func (s *LookupService) Resolve(ctx context.Context, listing domain.Listing) (*ResolvedListing, error) {
	if strings.TrimSpace(listing.Title) == "" {
		return nil, domain.ErrInvalidRequest
	}

	key := "resolution:" + normalizeTitle(listing.Title)
	cached := false

	res, err := s.getFromCache(ctx, key)
	if err == nil {
		cached = true
	} else {
		res = s.resolver.Resolve(listing.Title)
		if err := s.setInCache(ctx, key, res); err != nil {
			// A failing cache never fails a lookup.
			s.logger.Warn("caching resolution failed", logger.Error(err))
		}
	}

	return s.describe(listing.Title, res, cached), nil
}

// ProductsForKeyword returns the names of the products indexed under keyword.
func (s *LookupService) ProductsForKeyword(keyword string) ([]string, error) {
	bucket, ok := s.index.Lookup(strings.ToLower(keyword))
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrKeywordNotFound, keyword)
	}
	return s.names(bucket), nil
}

// Stats reports the size of the served index.
func (s *LookupService) Stats() IndexStats {
	return IndexStats{
		Products: s.index.ProductCount(),
		Keywords: s.index.Len(),
	}
}

func (s *LookupService) describe(title string, res domain.Resolution, cached bool) *ResolvedListing {
	out := &ResolvedListing{
		Title:               title,
		Outcome:             res.Outcome,
		Candidates:          s.names(res.Candidates),
		EliminationKeywords: res.EliminationKeywords,
		Cached:              cached,
	}
	if res.Matched() {
		out.ProductName = s.catalog.Name(res.ProductID)
	}
	return out
}

func (s *LookupService) names(ids []domain.ProductID) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, s.catalog.Name(id))
	}
	return names
}

func (s *LookupService) getFromCache(ctx context.Context, key string) (domain.Resolution, error) {
	if s.cache == nil {
		return domain.Resolution{}, domain.ErrCacheMiss
	}
	res, err := s.cache.Get(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrCacheMiss) {
		s.logger.Warn("cache lookup failed", logger.String("key", key), logger.Error(err))
	}
	return res, err
}

func (s *LookupService) setInCache(ctx context.Context, key string, res domain.Resolution) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, res, s.cacheTTL)
}

package usecase

import (
	"context"
	"sort"

	"github.com/listingmatch/backend/internal/domain"
	"github.com/listingmatch/backend/internal/logger"
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	EnableDebugLogging bool
}

// MatchingService assigns listings to catalog products
type MatchingService struct {
	logger             logger.Logger
	enableDebugLogging bool
}

// KeywordCount pairs an elimination keyword with how often it disqualified
// every remaining candidate.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// MatchReport summarizes one matching pass.
type MatchReport struct {
	Listings   int `json:"listings"`
	Matched    int `json:"matched"`
	Ambiguous  int `json:"ambiguous"`
	Unmatched  int `json:"unmatched"`
	NoKeywords int `json:"no_keywords"`
	// Eliminations counts elimination keywords across all listings.
	Eliminations map[string]int `json:"eliminations"`
}

// TopEliminations returns the n most frequent elimination keywords, most
// frequent first and alphabetical among equals. n <= 0 returns all of them.
func (r *MatchReport) TopEliminations(n int) []KeywordCount {
	counts := make([]KeywordCount, 0, len(r.Eliminations))
	for kw, c := range r.Eliminations {
		counts = append(counts, KeywordCount{Keyword: kw, Count: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Keyword < counts[j].Keyword
	})
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(log logger.Logger, config MatchConfig) *MatchingService {
	if log == nil {
		log = logger.NewNop()
	}
	return &MatchingService{
		logger:             log,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

type assignment struct {
	product domain.ProductID
	listing domain.Listing
}

// Match resolves every listing against the catalog and attaches each uniquely
// matched listing to its product.
//
// Resolution is read-only against the catalog; attachments are collected and
// applied in a single pass once every listing has been resolved. A cancelled
// context stops the pass before anything is attached.
func (s *MatchingService) Match(
	ctx context.Context,
	catalog *Catalog,
	listings []domain.Listing,
) (*MatchReport, error) {
	index := catalog.BuildIndex()
	resolver := NewResolver(index)

	s.logger.Debug("index built",
		logger.Int("products", index.ProductCount()),
		logger.Int("keywords", index.Len()),
	)

	report := &MatchReport{
		Listings:     len(listings),
		Eliminations: make(map[string]int),
	}
	var assignments []assignment

	for _, listing := range listings {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		res := resolver.Resolve(listing.Title)
		for _, kw := range res.EliminationKeywords {
			report.Eliminations[kw]++
		}

		switch res.Outcome {
		case domain.OutcomeMatched:
			report.Matched++
			assignments = append(assignments, assignment{product: res.ProductID, listing: listing})
		case domain.OutcomeAmbiguous:
			report.Ambiguous++
		case domain.OutcomeUnmatched:
			report.Unmatched++
		case domain.OutcomeNoKeywords:
			report.NoKeywords++
		}

		if s.enableDebugLogging {
			s.logger.Debug("listing resolved",
				logger.String("title", listing.Title),
				logger.String("outcome", string(res.Outcome)),
				logger.Int("candidates", len(res.Candidates)),
				logger.String("product", catalog.Name(res.ProductID)),
			)
		}
	}

	for _, a := range assignments {
		if err := catalog.Attach(a.product, a.listing); err != nil {
			return nil, err
		}
	}

	return report, nil
}

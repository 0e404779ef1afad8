package usecase

import "github.com/listingmatch/backend/internal/domain"

// Resolver narrows the candidate products of a listing title by successive
// keyword intersection. It only reads the index.
type Resolver struct {
	index *InvertedIndex
}

// NewResolver creates a resolver over index.
func NewResolver(index *InvertedIndex) *Resolver {
	return &Resolver{index: index}
}

// Resolve decides which product, if any, a listing title belongs to.
//
// Tokens that are not keywords add no constraint. The first keyword token sets
// the candidate set to its bucket; each later one intersects with its bucket.
// Only a candidate set of exactly one product is a match; ambiguity is never
// broken.
func (r *Resolver) Resolve(title string) domain.Resolution {
	tokens := TokenizeTitle(title)

	var (
		candidates  []domain.ProductID
		constrained bool
		eliminated  []string
	)

	for _, token := range tokens {
		bucket, ok := r.index.Lookup(token)
		if !ok {
			continue
		}

		if !constrained {
			candidates = append([]domain.ProductID(nil), bucket...)
			constrained = true
			continue
		}

		before := len(candidates)
		candidates = intersectSorted(candidates, bucket)
		if before > 0 && len(candidates) == 0 {
			eliminated = append(eliminated, token)
		}
	}

	res := domain.Resolution{
		ProductID:           domain.NoProduct,
		Candidates:          candidates,
		Tokens:              tokens,
		EliminationKeywords: eliminated,
	}

	switch {
	case !constrained:
		res.Outcome = domain.OutcomeNoKeywords
	case len(candidates) == 1:
		res.Outcome = domain.OutcomeMatched
		res.ProductID = candidates[0]
	case len(candidates) == 0:
		res.Outcome = domain.OutcomeUnmatched
	default:
		res.Outcome = domain.OutcomeAmbiguous
	}

	return res
}

// intersectSorted merges two ascending ID lists into their intersection.
func intersectSorted(a, b []domain.ProductID) []domain.ProductID {
	out := make([]domain.ProductID, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

package usecase

import (
	"sort"

	"github.com/listingmatch/backend/internal/domain"
)

// InvertedIndex maps a keyword to the products carrying it. Buckets hold
// catalog slot handles in ascending order; the index never owns products.
// It is not kept in sync with the catalog and must be rebuilt when identity
// fields change.
type InvertedIndex struct {
	buckets  map[string][]domain.ProductID
	products int
}

// BuildIndex indexes every product under each of its keywords. The product's
// position in the slice is its ProductID.
func BuildIndex(products []domain.Product) *InvertedIndex {
	idx := &InvertedIndex{
		buckets:  make(map[string][]domain.ProductID),
		products: len(products),
	}

	for i, p := range products {
		id := domain.ProductID(i)
		for _, kw := range ExtractKeywords(p) {
			idx.buckets[kw] = append(idx.buckets[kw], id)
		}
	}

	return idx
}

// Lookup returns the bucket for keyword. The returned slice must not be modified.
func (idx *InvertedIndex) Lookup(keyword string) ([]domain.ProductID, bool) {
	bucket, ok := idx.buckets[keyword]
	return bucket, ok
}

// Keywords returns every indexed keyword in sorted order.
func (idx *InvertedIndex) Keywords() []string {
	keywords := make([]string, 0, len(idx.buckets))
	for kw := range idx.buckets {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	return keywords
}

// Len returns the number of distinct keywords.
func (idx *InvertedIndex) Len() int {
	return len(idx.buckets)
}

// ProductCount returns the size of the product collection the index was built from.
func (idx *InvertedIndex) ProductCount() int {
	return idx.products
}

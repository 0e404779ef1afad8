package usecase

import (
	"sort"
	"strings"

	"github.com/listingmatch/backend/internal/domain"
)

// ExtractKeywords derives the keyword set of a product from its manufacturer,
// family and model, in that order. Tokens are lower-cased and deduplicated; the
// result is sorted so that callers see a deterministic order.
// ProductName and AnnouncedDate never contribute keywords.
func ExtractKeywords(p domain.Product) []string {
	joined := strings.Join([]string{p.Manufacturer, p.Family, p.Model}, " ")

	seen := make(map[string]struct{})
	var keywords []string
	for _, word := range strings.Fields(joined) {
		kw := strings.ToLower(word)
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}

	sort.Strings(keywords)
	return keywords
}

// TokenizeTitle splits a listing title on spaces and forward slashes and
// lower-cases every fragment. Empty fragments are skipped since no keyword is empty.
func TokenizeTitle(title string) []string {
	parts := strings.FieldsFunc(title, func(r rune) bool {
		return r == ' ' || r == '/'
	})

	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		tokens = append(tokens, strings.ToLower(part))
	}
	return tokens
}

// normalizeTitle produces the cache key form of a title: two titles with the
// same token sequence always resolve identically.
func normalizeTitle(title string) string {
	return strings.Join(TokenizeTitle(title), " ")
}

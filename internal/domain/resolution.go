package domain

// Outcome classifies how a listing resolved against the index.
type Outcome string

const (
	// OutcomeMatched means exactly one product survived every title keyword.
	OutcomeMatched Outcome = "matched"
	// OutcomeAmbiguous means more than one product survived.
	OutcomeAmbiguous Outcome = "ambiguous"
	// OutcomeUnmatched means the candidate set was narrowed to nothing.
	OutcomeUnmatched Outcome = "unmatched"
	// OutcomeNoKeywords means no title token was a known keyword.
	OutcomeNoKeywords Outcome = "no_keywords"
)

// Resolution is the result of resolving one listing title.
type Resolution struct {
	Outcome Outcome `json:"outcome"`
	// ProductID is only meaningful when Outcome is OutcomeMatched.
	ProductID  ProductID   `json:"product_id"`
	Candidates []ProductID `json:"candidates,omitempty"`
	Tokens     []string    `json:"tokens,omitempty"`
	// EliminationKeywords are tokens that emptied a non-empty candidate set.
	EliminationKeywords []string `json:"elimination_keywords,omitempty"`
}

// Matched reports whether the listing resolved to a single product.
func (r Resolution) Matched() bool {
	return r.Outcome == OutcomeMatched
}

// NoProduct is the ProductID carried by resolutions that did not match.
const NoProduct ProductID = -1

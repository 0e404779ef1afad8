package domain

import (
	"context"
	"io"
	"time"
)

// ResolutionCache memoizes resolutions by normalized listing title.
type ResolutionCache interface {
	Get(ctx context.Context, key string) (Resolution, error)
	Set(ctx context.Context, key string, value Resolution, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SourceFetcher opens remote line-delimited sources.
type SourceFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// LoadStats describes how a line-delimited source was consumed.
type LoadStats struct {
	Lines   int `json:"lines"`
	Dropped int `json:"dropped"`
}

// RecordReader loads typed records from a path-like source.
type RecordReader interface {
	ReadProducts(ctx context.Context, source string) ([]Product, LoadStats, error)
	ReadListings(ctx context.Context, source string) ([]Listing, LoadStats, error)
}

// ResultWriter persists the annotated product collection.
type ResultWriter interface {
	WriteResults(ctx context.Context, path string, results []ProductResult) error
	WriteTitles(ctx context.Context, path string, results []ProductTitles) error
}

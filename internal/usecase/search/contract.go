package search

import (
	"context"

	"github.com/kailas-cloud/pixdex/internal/domain"
)

// Encoder vectorizes the query image.
type Encoder interface {
	Encode(ctx context.Context, image []byte) ([]float32, error)
}

// CatalogProvider returns the current immutable catalog snapshot.
type CatalogProvider interface {
	Current() *domain.Catalog
}

// Ranker orders catalog entries by similarity to the query vector.
type Ranker interface {
	Rank(query []float32, entries []domain.CatalogEntry, k int) []domain.SearchResult
}

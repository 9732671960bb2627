package search

import (
	"sort"

	"github.com/kailas-cloud/pixdex/internal/domain"
)

// ExactRanker scores every catalog entry against the query: O(n·d) per call,
// fine into the low tens of thousands of entries. Pure and stateless, so it
// is safe to share across concurrent requests.
type ExactRanker struct{}

// NewExactRanker creates the linear-scan ranker.
func NewExactRanker() *ExactRanker {
	return &ExactRanker{}
}

// Rank returns the top k entries in strictly descending similarity order.
// Exact ties keep the catalog's insertion order. k <= 0 and an empty entry
// list both return an empty (non-nil) slice; k beyond the catalog size
// returns everything.
func (r *ExactRanker) Rank(query []float32, entries []domain.CatalogEntry, k int) []domain.SearchResult {
	if k <= 0 || len(entries) == 0 {
		return []domain.SearchResult{}
	}

	queryNorm := domain.L2Norm(query)

	results := make([]domain.SearchResult, len(entries))
	for i, e := range entries {
		results[i] = domain.SearchResult{
			Product:    e.Product,
			Similarity: cosine(query, queryNorm, e),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if k < len(results) {
		results = results[:k]
	}
	return results
}

// cosine computes dot(query, entry)/(‖query‖·‖entry‖) accumulating in
// float64. Zero-norm vectors and dimension mismatches score 0 so the
// function stays total.
func cosine(query []float32, queryNorm float64, e domain.CatalogEntry) float64 {
	if len(query) != len(e.Vector) {
		return 0
	}
	if queryNorm == 0 || e.Norm == 0 {
		return 0
	}

	var dot float64
	for i, q := range query {
		dot += float64(q) * float64(e.Vector[i])
	}
	return dot / (queryNorm * e.Norm)
}

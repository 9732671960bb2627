package search

import (
	"sort"
	"sync"

	"github.com/coder/hnsw"

	"github.com/kailas-cloud/pixdex/internal/domain"
)

// HNSWRanker ranks through an approximate nearest-neighbor graph instead of
// a linear scan. The graph is built once per catalog snapshot and discarded
// when a new snapshot arrives; candidates returned by the graph are rescored
// with exact cosine similarity so scores and ordering match the exact ranker
// for everything the graph recalls.
type HNSWRanker struct {
	m        int
	efSearch int

	mu sync.Mutex
	// Snapshot identity: entries slices are immutable and swapped wholesale,
	// so pointer+length equality identifies a generation.
	graphFor *domain.CatalogEntry
	graphLen int
	graph    *hnsw.Graph[int]
	entries  []domain.CatalogEntry
}

// HNSWConfig holds graph tuning knobs.
type HNSWConfig struct {
	M        int
	EFSearch int
}

// NewHNSWRanker creates an approximate ranker.
func NewHNSWRanker(cfg HNSWConfig) *HNSWRanker {
	return &HNSWRanker{m: cfg.M, efSearch: cfg.EFSearch}
}

// Rank returns up to k entries ordered by exact cosine similarity over the
// graph's candidate set. Recall below 100% is the accepted trade-off.
func (r *HNSWRanker) Rank(query []float32, entries []domain.CatalogEntry, k int) []domain.SearchResult {
	if k <= 0 || len(entries) == 0 {
		return []domain.SearchResult{}
	}

	graph := r.graphForEntries(entries)

	r.mu.Lock()
	neighbors := graph.Search(query, k)
	r.mu.Unlock()

	queryNorm := domain.L2Norm(query)

	type candidate struct {
		idx int
		sim float64
	}
	candidates := make([]candidate, 0, len(neighbors))
	for _, n := range neighbors {
		candidates = append(candidates, candidate{
			idx: n.Key,
			sim: cosine(query, queryNorm, entries[n.Key]),
		})
	}

	// Exact rescoring, catalog order on ties.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		return candidates[i].idx < candidates[j].idx
	})

	if k < len(candidates) {
		candidates = candidates[:k]
	}

	results := make([]domain.SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = domain.SearchResult{
			Product:    entries[c.idx].Product,
			Similarity: c.sim,
		}
	}
	return results
}

// graphForEntries returns the graph for the given snapshot, building it on
// first sight of a new generation.
func (r *HNSWRanker) graphForEntries(entries []domain.CatalogEntry) *hnsw.Graph[int] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.graph != nil && r.graphFor == &entries[0] && r.graphLen == len(entries) {
		return r.graph
	}

	g := hnsw.NewGraph[int]()
	g.Distance = hnsw.CosineDistance
	if r.m > 0 {
		g.M = r.m
	}
	if r.efSearch > 0 {
		g.EfSearch = r.efSearch
	}

	for i, e := range entries {
		g.Add(hnsw.MakeNode(i, e.Vector))
	}

	r.graphFor = &entries[0]
	r.graphLen = len(entries)
	r.graph = g
	r.entries = entries
	return g
}

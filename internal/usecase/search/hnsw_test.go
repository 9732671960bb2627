package search

import (
	"math"
	"reflect"
	"testing"
)

func TestHNSWRanker_MatchesExactRankerOnSmallCatalog(t *testing.T) {
	entries := entriesOf(
		[]float32{1, 0},
		[]float32{0, 1},
		[]float32{0.7071, 0.7071},
		[]float32{-1, 0},
	)
	query := []float32{1, 0}

	exact := NewExactRanker().Rank(query, entries, 3)
	approx := NewHNSWRanker(HNSWConfig{M: 16, EFSearch: 64}).Rank(query, entries, 3)

	if got, want := resultIDs(approx), resultIDs(exact); !reflect.DeepEqual(got, want) {
		t.Fatalf("hnsw order = %v, exact order = %v", got, want)
	}
	for i := range exact {
		if math.Abs(approx[i].Similarity-exact[i].Similarity) > 1e-6 {
			t.Errorf("result %d: hnsw similarity = %f, exact = %f", i, approx[i].Similarity, exact[i].Similarity)
		}
	}
}

func TestHNSWRanker_ReusesGraphForSameSnapshot(t *testing.T) {
	entries := entriesOf([]float32{1, 0}, []float32{0, 1})
	ranker := NewHNSWRanker(HNSWConfig{M: 16, EFSearch: 64})

	ranker.Rank([]float32{1, 0}, entries, 1)
	first := ranker.graph
	ranker.Rank([]float32{0, 1}, entries, 1)

	if ranker.graph != first {
		t.Error("graph was rebuilt for an unchanged snapshot")
	}
}

func TestHNSWRanker_RebuildsGraphForNewSnapshot(t *testing.T) {
	ranker := NewHNSWRanker(HNSWConfig{M: 16, EFSearch: 64})

	old := entriesOf([]float32{1, 0})
	ranker.Rank([]float32{1, 0}, old, 1)
	first := ranker.graph

	fresh := entriesOf([]float32{1, 0}, []float32{0, 1})
	results := ranker.Rank([]float32{0, 1}, fresh, 1)

	if ranker.graph == first {
		t.Error("graph was not rebuilt for a new snapshot")
	}
	if got, want := resultIDs(results), []string{"b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("results after swap = %v, want %v", got, want)
	}
}

func TestHNSWRanker_EmptyInputs(t *testing.T) {
	ranker := NewHNSWRanker(HNSWConfig{M: 16, EFSearch: 64})

	if results := ranker.Rank([]float32{1, 0}, nil, 5); results == nil || len(results) != 0 {
		t.Errorf("empty catalog results = %v, want empty slice", results)
	}
	if results := ranker.Rank([]float32{1, 0}, entriesOf([]float32{1, 0}), 0); results == nil || len(results) != 0 {
		t.Errorf("zero k results = %v, want empty slice", results)
	}
}

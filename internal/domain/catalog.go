package domain

import (
	"math"
	"time"
)

// KeyPrefix namespaces all pixdex keys in shared key-value stores.
const KeyPrefix = "pixdex:"

// Catalog is one immutable generation of the embedding store: every usable
// catalog entry in source order plus the encoder convention it was built with.
// Once assembled it is never mutated; rebuilds produce a fresh Catalog.
type Catalog struct {
	Entries    []CatalogEntry
	Model      string
	Dimensions int
	BuiltAt    time.Time
}

// Len returns the number of usable entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}

// NewCatalogEntry pairs a product with its vector, precomputing the L2 norm.
func NewCatalogEntry(p Product, vector []float32) CatalogEntry {
	return CatalogEntry{Product: p, Vector: vector, Norm: L2Norm(vector)}
}

// L2Norm computes the Euclidean norm of a vector in float64.
func L2Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

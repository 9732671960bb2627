package domain

// Product is one catalog item eligible to appear in search results.
// The authoritative set comes from the external catalog source and is
// immutable once loaded.
type Product struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	ImagePath string `json:"image_path"`
}

// CatalogEntry pairs a Product with its embedding vector.
// Norm holds the vector's L2 norm, computed once when the entry is built or
// loaded so ranking never recomputes it.
type CatalogEntry struct {
	Product Product
	Vector  []float32
	Norm    float64
}

// SearchResult pairs a product with its similarity to the query vector.
// Results are created per request and never persisted.
type SearchResult struct {
	Product    Product
	Similarity float64
}

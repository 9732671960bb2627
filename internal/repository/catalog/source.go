// Package catalog persists the product catalog: the external metadata source
// and the versioned embedding cache file.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/pixdex/internal/domain"
)

// FileSource reads products from a metadata file on demand.
type FileSource struct {
	path string
}

// NewFileSource creates a product source bound to a metadata file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Products loads the product list from the metadata file.
func (s *FileSource) Products() ([]domain.Product, error) {
	return LoadProducts(s.path)
}

// LoadProducts reads the catalog source file: a JSON array of products.
// Order in the file is the catalog's insertion order and drives tie-breaking.
func LoadProducts(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read catalog source %s: %w", path, err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalog source %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(products))
	for i, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog source %s: product %d has no id", path, i)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("catalog source %s: duplicate product id %q", path, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	return products, nil
}

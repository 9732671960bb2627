package catalog

import (
	"context"

	"github.com/kailas-cloud/pixdex/internal/domain"
)

// Source provides the authoritative product list.
type Source interface {
	Products() ([]domain.Product, error)
}

// Cache persists catalogs across restarts.
type Cache interface {
	Load() (*domain.Catalog, error)
	Persist(cat *domain.Catalog) error
}

// Builder assembles a catalog by encoding product images.
type Builder interface {
	Build(ctx context.Context, products []domain.Product) (*domain.Catalog, error)
}

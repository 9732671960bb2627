package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/pixdex/internal/domain"
)

// mockEncoder returns a fixed vector, or an error for image payloads listed in failOn.
type mockEncoder struct {
	vector []float32
	failOn map[string]struct{}
	calls  atomic.Int64
}

func (m *mockEncoder) Encode(_ context.Context, image []byte) ([]float32, error) {
	m.calls.Add(1)
	if _, fail := m.failOn[string(image)]; fail {
		return nil, errors.New("undecodable image")
	}
	out := make([]float32, len(m.vector))
	copy(out, m.vector)
	return out, nil
}

// writeImage creates a fake image file under dir and returns its relative path.
func writeImage(t *testing.T, dir, name, content string) string {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write image %s: %v", name, err)
	}
	return name
}

// testCatalog builds a small in-memory catalog for cache round-trip tests.
func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	return &domain.Catalog{
		Entries: []domain.CatalogEntry{
			domain.NewCatalogEntry(
				domain.Product{ID: "p1", Name: "Sneaker", Category: "shoes", ImagePath: "img/p1.jpg"},
				[]float32{1, 0},
			),
			domain.NewCatalogEntry(
				domain.Product{ID: "p2", Name: "Boot", Category: "shoes", ImagePath: "img/p2.jpg"},
				[]float32{0, 1},
			),
		},
		Model:      "clip-vit-base-patch32",
		Dimensions: 2,
	}
}

package search

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pixdex/internal/domain"
)

type mockEncoder struct {
	vector []float32
	err    error
	calls  int
}

func (m *mockEncoder) Encode(_ context.Context, _ []byte) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

type mockCatalog struct {
	catalog *domain.Catalog
}

func (m *mockCatalog) Current() *domain.Catalog { return m.catalog }

func testLogger() *zap.Logger { return zap.NewNop() }

// pngBytes returns a valid 1x1 PNG payload.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 128, G: 64, B: 32, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func entriesOf(vectors ...[]float32) []domain.CatalogEntry {
	entries := make([]domain.CatalogEntry, 0, len(vectors))
	for i, v := range vectors {
		entries = append(entries, domain.NewCatalogEntry(domain.Product{
			ID:   string(rune('a' + i)),
			Name: "product " + string(rune('a'+i)),
		}, v))
	}
	return entries
}

func resultIDs(results []domain.SearchResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.Product.ID)
	}
	return ids
}

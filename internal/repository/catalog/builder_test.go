package catalog

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pixdex/internal/domain"
)

func TestBuilder_SkipsCorruptImages(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "p1.jpg", "good-image-1")
	writeImage(t, dir, "p2.jpg", "corrupt-image")
	writeImage(t, dir, "p3.jpg", "good-image-3")

	enc := &mockEncoder{
		vector: []float32{1, 0},
		failOn: map[string]struct{}{"corrupt-image": {}},
	}

	b := NewBuilder(BuilderConfig{
		Encoder:     enc,
		ImagesDir:   dir,
		Model:       "m",
		Dimensions:  2,
		Concurrency: 2,
		Logger:      zap.NewNop(),
	})

	products := []domain.Product{
		{ID: "p1", ImagePath: "p1.jpg"},
		{ID: "p2", ImagePath: "p2.jpg"},
		{ID: "p3", ImagePath: "p3.jpg"},
	}

	cat, err := b.Build(context.Background(), products)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(cat.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(cat.Entries))
	}
	if cat.Entries[0].Product.ID != "p1" || cat.Entries[1].Product.ID != "p3" {
		t.Errorf("unexpected entry order: %s, %s", cat.Entries[0].Product.ID, cat.Entries[1].Product.ID)
	}
}

func TestBuilder_SkipsMissingImages(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "p1.jpg", "good")

	enc := &mockEncoder{vector: []float32{1, 0}}
	b := NewBuilder(BuilderConfig{
		Encoder: enc, ImagesDir: dir, Model: "m", Dimensions: 2, Logger: zap.NewNop(),
	})

	products := []domain.Product{
		{ID: "p1", ImagePath: "p1.jpg"},
		{ID: "p2", ImagePath: "absent.jpg"},
	}

	cat, err := b.Build(context.Background(), products)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(cat.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(cat.Entries))
	}
	// The missing image must not reach the encoder.
	if got := enc.calls.Load(); got != 1 {
		t.Errorf("expected 1 encoder call, got %d", got)
	}
}

func TestBuilder_EmptyCatalog(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "p1.jpg", "corrupt")

	enc := &mockEncoder{failOn: map[string]struct{}{"corrupt": {}}}
	b := NewBuilder(BuilderConfig{
		Encoder: enc, ImagesDir: dir, Model: "m", Dimensions: 2, Logger: zap.NewNop(),
	})

	_, err := b.Build(context.Background(), []domain.Product{{ID: "p1", ImagePath: "p1.jpg"}})
	if !errors.Is(err, domain.ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestBuilder_PreservesSourceOrderUnderConcurrency(t *testing.T) {
	dir := t.TempDir()
	var products []domain.Product
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, id := range ids {
		name := id + ".jpg"
		writeImage(t, dir, name, "image-"+id)
		products = append(products, domain.Product{ID: id, ImagePath: name})
	}

	enc := &mockEncoder{vector: []float32{0.5, 0.5}}
	b := NewBuilder(BuilderConfig{
		Encoder: enc, ImagesDir: dir, Model: "m", Dimensions: 2, Concurrency: 4, Logger: zap.NewNop(),
	})

	cat, err := b.Build(context.Background(), products)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i, e := range cat.Entries {
		if e.Product.ID != ids[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, ids[i], e.Product.ID)
		}
	}
}

func TestBuilder_WrapsEncodingError(t *testing.T) {
	dir := t.TempDir()
	enc := &mockEncoder{vector: []float32{1}}
	b := NewBuilder(BuilderConfig{
		Encoder: enc, ImagesDir: dir, Model: "m", Dimensions: 1, Logger: zap.NewNop(),
	})

	_, err := b.encodeProduct(context.Background(), domain.Product{ID: "p1", ImagePath: "absent.jpg"})
	var encErr *domain.EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected EncodingError, got %v", err)
	}
	if encErr.ProductID != "p1" {
		t.Errorf("expected product id p1, got %s", encErr.ProductID)
	}
}

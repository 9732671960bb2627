package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pixdex/internal/domain"
	"github.com/kailas-cloud/pixdex/internal/metrics"
)

// Builder assembles a catalog by encoding every product image exactly once.
// Encoding runs under a bounded worker pool; completed entries keep the
// source order regardless of completion order. Unreadable images and encoder
// failures are skipped with a warning — a partial catalog beats none.
type Builder struct {
	encoder     domain.Encoder
	imagesDir   string
	model       string
	dimensions  int
	concurrency int
	logger      *zap.Logger
}

// BuilderConfig holds builder settings.
type BuilderConfig struct {
	Encoder     domain.Encoder
	ImagesDir   string
	Model       string
	Dimensions  int
	Concurrency int
	Logger      *zap.Logger
}

// NewBuilder creates a catalog builder.
func NewBuilder(cfg BuilderConfig) *Builder {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Builder{
		encoder:     cfg.Encoder,
		imagesDir:   cfg.ImagesDir,
		model:       cfg.Model,
		dimensions:  cfg.Dimensions,
		concurrency: concurrency,
		logger:      cfg.Logger,
	}
}

// Build encodes all products and returns the assembled catalog.
// Returns domain.ErrEmptyCatalog when zero entries survive.
func (b *Builder) Build(ctx context.Context, products []domain.Product) (*domain.Catalog, error) {
	start := time.Now()

	// One slot per product so order survives concurrent completion.
	vectors := make([][]float32, len(products))
	errs := make([]error, len(products))

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for i := range products {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			vectors[i], errs[i] = b.encodeProduct(ctx, products[i])
		}(i)
	}
	wg.Wait()

	entries := make([]domain.CatalogEntry, 0, len(products))
	skipped := 0
	for i, p := range products {
		if errs[i] != nil {
			skipped++
			metrics.CatalogBuildSkippedTotal.Inc()
			b.logger.Warn("Skipping catalog entry",
				zap.String("product_id", p.ID),
				zap.String("image_path", p.ImagePath),
				zap.Error(errs[i]),
			)
			continue
		}
		entries = append(entries, domain.NewCatalogEntry(p, vectors[i]))
	}

	duration := time.Since(start)

	if len(entries) == 0 {
		metrics.CatalogBuildsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("built 0 of %d products: %w", len(products), domain.ErrEmptyCatalog)
	}

	metrics.CatalogBuildsTotal.WithLabelValues("ok").Inc()
	metrics.CatalogBuildDuration.Observe(duration.Seconds())

	b.logger.Info("Catalog build completed",
		zap.Int("entries", len(entries)),
		zap.Int("skipped", skipped),
		zap.Duration("duration", duration),
	)

	return &domain.Catalog{
		Entries:    entries,
		Model:      b.model,
		Dimensions: b.dimensions,
		BuiltAt:    time.Now().UTC(),
	}, nil
}

// encodeProduct reads one product image and encodes it.
func (b *Builder) encodeProduct(ctx context.Context, p domain.Product) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewEncodingError(p.ID, p.ImagePath, err)
	}

	path := filepath.Join(b.imagesDir, filepath.Clean(p.ImagePath))
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewEncodingError(p.ID, p.ImagePath, err)
	}

	vec, err := b.encoder.Encode(ctx, image)
	if err != nil {
		return nil, domain.NewEncodingError(p.ID, p.ImagePath, err)
	}

	return vec, nil
}

// Package search orchestrates a similarity query: validate the image, encode
// it, rank the catalog, shape the response.
package search

import (
	"bytes"
	"context"
	"fmt"
	"image"

	// Registered formats accepted as query uploads.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pixdex/internal/domain"
	"github.com/kailas-cloud/pixdex/internal/metrics"
)

// Service handles one search request end-to-end.
type Service struct {
	encoder  Encoder
	catalog  CatalogProvider
	ranker   Ranker
	defaultK int
	maxK     int
	logger   *zap.Logger
}

// New creates a search service.
func New(encoder Encoder, catalog CatalogProvider, ranker Ranker, defaultK, maxK int, logger *zap.Logger) *Service {
	return &Service{
		encoder:  encoder,
		catalog:  catalog,
		ranker:   ranker,
		defaultK: defaultK,
		maxK:     maxK,
		logger:   logger,
	}
}

// Search validates the uploaded image, obtains its embedding and ranks the
// current catalog snapshot. k = 0 means the configured default; k is clamped
// to the configured maximum. An empty catalog yields an empty result list,
// not an error.
func (s *Service) Search(ctx context.Context, imageBytes []byte, k int) ([]domain.SearchResult, error) {
	if err := validateImage(imageBytes); err != nil {
		metrics.SearchesTotal.WithLabelValues("invalid_image").Inc()
		return nil, err
	}

	if k <= 0 {
		k = s.defaultK
	}
	if k > s.maxK {
		k = s.maxK
	}

	query, err := s.encoder.Encode(ctx, imageBytes)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("encoder_error").Inc()
		return nil, fmt.Errorf("encode query: %w", err)
	}

	cat := s.catalog.Current()
	if cat == nil {
		metrics.SearchesTotal.WithLabelValues("internal").Inc()
		return nil, fmt.Errorf("no catalog snapshot: %w", domain.ErrEmptyCatalog)
	}

	results := s.ranker.Rank(query, cat.Entries, k)

	metrics.SearchesTotal.WithLabelValues("ok").Inc()
	metrics.SearchResults.Observe(float64(len(results)))

	s.logger.Debug("Search completed",
		zap.Int("k", k),
		zap.Int("results", len(results)),
		zap.Int("catalog_entries", len(cat.Entries)),
	)

	return results, nil
}

// validateImage checks that the bytes decode as a supported image without
// decoding full pixel data. The encoder is never called for invalid uploads.
func validateImage(imageBytes []byte) error {
	if len(imageBytes) == 0 {
		return fmt.Errorf("empty payload: %w", domain.ErrInvalidImage)
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(imageBytes)); err != nil {
		return fmt.Errorf("decode image: %w", domain.ErrInvalidImage)
	} else if format == "" {
		return fmt.Errorf("unknown image format: %w", domain.ErrInvalidImage)
	}
	return nil
}

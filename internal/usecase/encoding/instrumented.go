// Package encoding decorates the image encoder with observability.
package encoding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pixdex/internal/domain"
)

// InstrumentedEncoder wraps an Encoder with logging.
// Transport metrics (requests, duration) are recorded in transport/openai;
// this layer owns per-call logging only.
type InstrumentedEncoder struct {
	inner  domain.Encoder
	model  string
	logger *zap.Logger
}

// NewInstrumentedEncoder wraps an encoder with observability.
func NewInstrumentedEncoder(inner domain.Encoder, model string, logger *zap.Logger) *InstrumentedEncoder {
	return &InstrumentedEncoder{inner: inner, model: model, logger: logger}
}

// Encode delegates to the inner encoder and logs the outcome.
func (p *InstrumentedEncoder) Encode(ctx context.Context, image []byte) ([]float32, error) {
	start := time.Now()

	vec, err := p.inner.Encode(ctx, image)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Encode request failed",
			zap.String("model", p.model),
			zap.Int("image_bytes", len(image)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("encode: %w", err)
	}

	p.logger.Debug("Encode request completed",
		zap.String("model", p.model),
		zap.Int("image_bytes", len(image)),
		zap.Int("dimensions", len(vec)),
		zap.Duration("duration", duration),
	)

	return vec, nil
}

// HealthCheck delegates to the inner encoder when it supports health checks.
func (p *InstrumentedEncoder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("inner encoder: %w", err)
		}
	}
	return nil
}

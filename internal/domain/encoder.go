package domain

import "context"

// Encoder is the shared image vectorization contract between layers.
// Implementations must be deterministic for a given image and produce
// comparable vectors across catalog and query calls.
type Encoder interface {
	Encode(ctx context.Context, image []byte) ([]float32, error)
}

// HealthChecker verifies encoder availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

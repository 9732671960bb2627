package health

import "context"

// CatalogChecker reports whether a usable catalog snapshot is loaded.
type CatalogChecker interface {
	HealthCheck(ctx context.Context) error
}

// EncoderChecker checks encoder backend availability.
type EncoderChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks query-cache store availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

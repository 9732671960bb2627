// Package catalog owns the embedding store lifecycle: load or build at
// startup, immutable snapshots for readers, atomic swap on rebuild.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pixdex/internal/domain"
	"github.com/kailas-cloud/pixdex/internal/metrics"
)

// Snapshot is one installed catalog generation plus its provenance.
type Snapshot struct {
	*domain.Catalog
	Source string // "cache" or "built"
}

// Stats summarizes the current snapshot for the stats endpoint.
type Stats struct {
	Entries    int       `json:"entries"`
	Dimensions int       `json:"dimensions"`
	Model      string    `json:"model"`
	Source     string    `json:"source"`
	BuiltAt    time.Time `json:"built_at"`
}

// Manager holds the current catalog snapshot. Readers get the snapshot via
// an atomic pointer and never observe a partial rebuild: a rebuild assembles
// a whole new catalog and swaps it in, while in-flight requests keep the
// generation they started with.
type Manager struct {
	source  Source
	cache   Cache
	builder Builder
	logger  *zap.Logger

	snap      atomic.Pointer[Snapshot]
	rebuildMu sync.Mutex
}

// NewManager creates a catalog manager. source and builder may be nil for a
// cache-only deployment (no rebuild path).
func NewManager(source Source, cache Cache, builder Builder, logger *zap.Logger) *Manager {
	return &Manager{source: source, cache: cache, builder: builder, logger: logger}
}

// Init installs the first snapshot: the persisted cache when it loads
// cleanly, otherwise a fresh build. Corrupt and stale caches trigger the
// build fallback rather than a crash.
func (m *Manager) Init(ctx context.Context) error {
	cat, err := m.cache.Load()
	if err == nil {
		m.install(cat, "cache")
		m.logger.Info("Catalog loaded from cache",
			zap.Int("entries", len(cat.Entries)),
			zap.String("model", cat.Model),
			zap.Int("dimensions", cat.Dimensions),
		)
		return nil
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		m.logger.Info("No catalog cache, building from source")
	case errors.Is(err, domain.ErrCacheCorrupt), errors.Is(err, domain.ErrCacheStale):
		m.logger.Warn("Catalog cache rejected, rebuilding", zap.Error(err))
	default:
		return fmt.Errorf("load catalog cache: %w", err)
	}

	if m.source == nil || m.builder == nil {
		return fmt.Errorf("no catalog source to build from: %w", err)
	}

	cat, err = m.build(ctx)
	if err != nil {
		return err
	}
	m.install(cat, "built")
	return nil
}

// Current returns the catalog of the current snapshot, or nil before Init.
func (m *Manager) Current() *domain.Catalog {
	snap := m.snap.Load()
	if snap == nil {
		return nil
	}
	return snap.Catalog
}

// Stats reports the current snapshot's header.
func (m *Manager) Stats() Stats {
	snap := m.snap.Load()
	if snap == nil {
		return Stats{}
	}
	return Stats{
		Entries:    len(snap.Entries),
		Dimensions: snap.Dimensions,
		Model:      snap.Model,
		Source:     snap.Source,
		BuiltAt:    snap.BuiltAt,
	}
}

// Rebuild starts an asynchronous rebuild and returns its job ID.
// A second rebuild while one is running fails with ErrRebuildInProgress.
// The new snapshot becomes visible only when the build completes.
func (m *Manager) Rebuild(ctx context.Context) (string, error) {
	if m.source == nil || m.builder == nil {
		return "", fmt.Errorf("rebuild: no catalog source configured")
	}
	if !m.rebuildMu.TryLock() {
		return "", domain.ErrRebuildInProgress
	}

	jobID := uuid.NewString()
	jobLogger := m.logger.With(zap.String("job_id", jobID))
	jobLogger.Info("Catalog rebuild started")

	// The request that triggered the rebuild returns immediately; the build
	// itself must outlive it.
	go func() {
		defer m.rebuildMu.Unlock()

		cat, err := m.buildWith(context.Background(), jobLogger)
		if err != nil {
			jobLogger.Error("Catalog rebuild failed", zap.Error(err))
			return
		}
		m.install(cat, "built")
		jobLogger.Info("Catalog rebuild completed", zap.Int("entries", len(cat.Entries)))
	}()

	return jobID, nil
}

// HealthCheck reports an error while no usable snapshot is installed.
func (m *Manager) HealthCheck(_ context.Context) error {
	if m.Current().Len() == 0 {
		return domain.ErrEmptyCatalog
	}
	return nil
}

func (m *Manager) build(ctx context.Context) (*domain.Catalog, error) {
	return m.buildWith(ctx, m.logger)
}

func (m *Manager) buildWith(ctx context.Context, logger *zap.Logger) (*domain.Catalog, error) {
	products, err := m.source.Products()
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	cat, err := m.builder.Build(ctx, products)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	// A failed persist costs a rebuild on next start, not the snapshot.
	if err := m.cache.Persist(cat); err != nil {
		logger.Warn("Failed to persist catalog cache", zap.Error(err))
	}

	return cat, nil
}

func (m *Manager) install(cat *domain.Catalog, source string) {
	m.snap.Store(&Snapshot{Catalog: cat, Source: source})
	metrics.CatalogEntries.Set(float64(len(cat.Entries)))
}

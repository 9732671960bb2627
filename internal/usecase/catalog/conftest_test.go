package catalog

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pixdex/internal/domain"
)

type mockSource struct {
	products []domain.Product
	err      error
}

func (m *mockSource) Products() ([]domain.Product, error) {
	return m.products, m.err
}

type mockCache struct {
	loadCat    *domain.Catalog
	loadErr    error
	persisted  []*domain.Catalog
	persistErr error
}

func (m *mockCache) Load() (*domain.Catalog, error) {
	return m.loadCat, m.loadErr
}

func (m *mockCache) Persist(cat *domain.Catalog) error {
	m.persisted = append(m.persisted, cat)
	return m.persistErr
}

type mockBuilder struct {
	cat     *domain.Catalog
	err     error
	calls   int
	release chan struct{} // when non-nil, Build blocks until closed
}

func (m *mockBuilder) Build(_ context.Context, _ []domain.Product) (*domain.Catalog, error) {
	m.calls++
	if m.release != nil {
		<-m.release
	}
	return m.cat, m.err
}

func builtCatalog(ids ...string) *domain.Catalog {
	entries := make([]domain.CatalogEntry, len(ids))
	for i, id := range ids {
		entries[i] = domain.NewCatalogEntry(domain.Product{ID: id}, []float32{1, 0})
	}
	return &domain.Catalog{Entries: entries, Model: "m", Dimensions: 2, BuiltAt: time.Now().UTC()}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func newTestManager(t *testing.T, src *mockSource, cache *mockCache, b *mockBuilder) *Manager {
	t.Helper()
	return NewManager(src, cache, b, zap.NewNop())
}

// waitForSnapshot polls until the manager installs a snapshot with the given
// source, or the deadline passes.
func waitForSnapshot(t *testing.T, m *Manager, source string) *Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if snap := m.snap.Load(); snap != nil && snap.Source == source {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %q snapshot installed in time", source)
	return nil
}

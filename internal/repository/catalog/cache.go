package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kailas-cloud/pixdex/internal/domain"
)

// cacheVersion is the persisted envelope format version.
const cacheVersion = 1

// Cache reads and writes the catalog embedding cache file.
// The file is a self-describing JSON envelope: header fields (version, model,
// dimensions, count, built_at) followed by the entries. Load validates the
// header before accepting any vectors.
type Cache struct {
	path       string
	model      string
	dimensions int
}

// NewCache creates a cache codec bound to a file path and encoder convention.
func NewCache(path, model string, dimensions int) *Cache {
	return &Cache{path: path, model: model, dimensions: dimensions}
}

type cacheEnvelope struct {
	Version    int          `json:"version"`
	Model      string       `json:"model"`
	Dimensions int          `json:"dimensions"`
	Count      int          `json:"count"`
	BuiltAt    time.Time    `json:"built_at"`
	Entries    []cacheEntry `json:"entries"`
}

type cacheEntry struct {
	Product domain.Product `json:"product"`
	Vector  []float32      `json:"vector"`
}

// Load deserializes the cache file into a catalog.
// Returns domain.ErrCacheCorrupt for unreadable or inconsistent files and
// domain.ErrCacheStale when the file was built with a different encoder
// convention. A missing file surfaces as an fs.ErrNotExist wrap so callers
// can distinguish "never built" from "broken".
func (c *Cache) Load() (*domain.Catalog, error) {
	data, err := os.ReadFile(filepath.Clean(c.path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("read cache %s: %w", c.path, err)
		}
		return nil, fmt.Errorf("read cache %s: %w: %w", c.path, domain.ErrCacheCorrupt, err)
	}

	var env cacheEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse cache %s: %w: %w", c.path, domain.ErrCacheCorrupt, err)
	}

	if env.Version != cacheVersion {
		return nil, fmt.Errorf("cache %s: unsupported version %d: %w", c.path, env.Version, domain.ErrCacheCorrupt)
	}
	if env.Model == "" || env.Dimensions <= 0 {
		return nil, fmt.Errorf("cache %s: missing header fields: %w", c.path, domain.ErrCacheCorrupt)
	}
	if env.Count != len(env.Entries) {
		return nil, fmt.Errorf("cache %s: declared count %d but %d entries: %w",
			c.path, env.Count, len(env.Entries), domain.ErrCacheCorrupt)
	}
	for i, e := range env.Entries {
		if len(e.Vector) != env.Dimensions {
			return nil, fmt.Errorf("cache %s: entry %d has %d dimensions, header says %d: %w",
				c.path, i, len(e.Vector), env.Dimensions, domain.ErrCacheCorrupt)
		}
		if e.Product.ID == "" {
			return nil, fmt.Errorf("cache %s: entry %d has no product id: %w", c.path, i, domain.ErrCacheCorrupt)
		}
	}
	if env.Model != c.model || env.Dimensions != c.dimensions {
		return nil, fmt.Errorf("cache %s: built with %s/%d, configured encoder is %s/%d: %w",
			c.path, env.Model, env.Dimensions, c.model, c.dimensions, domain.ErrCacheStale)
	}

	entries := make([]domain.CatalogEntry, len(env.Entries))
	for i, e := range env.Entries {
		entries[i] = domain.NewCatalogEntry(e.Product, e.Vector)
	}

	return &domain.Catalog{
		Entries:    entries,
		Model:      env.Model,
		Dimensions: env.Dimensions,
		BuiltAt:    env.BuiltAt,
	}, nil
}

// Persist serializes the catalog atomically: write to a temp file in the
// destination directory, then rename over the target. A crash mid-write
// never leaves a file that Load would accept.
func (c *Cache) Persist(cat *domain.Catalog) error {
	env := cacheEnvelope{
		Version:    cacheVersion,
		Model:      cat.Model,
		Dimensions: cat.Dimensions,
		Count:      len(cat.Entries),
		BuiltAt:    cat.BuiltAt,
		Entries:    make([]cacheEntry, len(cat.Entries)),
	}
	for i, e := range cat.Entries {
		env.Entries[i] = cacheEntry{Product: e.Product, Vector: e.Vector}
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename cache file: %w", err)
	}

	return nil
}

package pixdex

import "time"

// Product is one catalog item returned by a search.
type Product struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	ImagePath string `json:"image_path"`
}

// SearchResult pairs a product with its similarity to the query image.
type SearchResult struct {
	Product    Product `json:"product"`
	Similarity float64 `json:"similarity"`
}

// CatalogStats describes the catalog snapshot currently serving searches.
type CatalogStats struct {
	Entries    int       `json:"entries"`
	Dimensions int       `json:"dimensions"`
	Model      string    `json:"model"`
	Source     string    `json:"source"` // "cache" or "built"
	BuiltAt    time.Time `json:"built_at"`
}

// RebuildJob is an accepted asynchronous catalog rebuild.
type RebuildJob struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status  string            `json:"status"` // "ok", "degraded", "error"
	Checks  map[string]string `json:"checks"` // component → "ok"/"error"
	Version string            `json:"version"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

package pixdex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := New(ts.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func writeErrorEnvelope(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/search" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			t.Errorf("image field missing: %v", err)
		} else {
			_ = file.Close()
		}
		if got := r.FormValue("k"); got != "3" {
			t.Errorf("k = %q, want 3", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{
					"product":    map[string]string{"id": "p1", "name": "Sneaker", "category": "shoes", "image_path": "images/p1.jpg"},
					"similarity": 0.93,
				},
			},
		})
	})

	results, err := client.Search(context.Background(), bytes.NewReader([]byte("img")), WithK(3))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Product.ID != "p1" || results[0].Similarity != 0.93 {
		t.Errorf("result = %+v", results[0])
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	cases := []struct {
		code     string
		status   int
		sentinel error
	}{
		{"invalid_image", http.StatusBadRequest, ErrInvalidImage},
		{"invalid_request", http.StatusBadRequest, ErrInvalidRequest},
		{"payload_too_large", http.StatusRequestEntityTooLarge, ErrPayloadTooLarge},
		{"encoder_rejected", http.StatusUnprocessableEntity, ErrEncoderRejected},
		{"encoder_unavailable", http.StatusBadGateway, ErrEncoderUnavailable},
		{"internal", http.StatusInternalServerError, ErrInternal},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeErrorEnvelope(w, tc.status, tc.code, "boom")
			})

			_, err := client.Search(context.Background(), bytes.NewReader([]byte("img")))
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("err = %v, want %v", err, tc.sentinel)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tc.status || apiErr.Code != tc.code {
				t.Errorf("apiErr = %+v", apiErr)
			}
		})
	}
}

func TestCatalogStats(t *testing.T) {
	builtAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/catalog/stats" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(CatalogStats{
			Entries:    120,
			Dimensions: 512,
			Model:      "clip-vit-base-patch32",
			Source:     "cache",
			BuiltAt:    builtAt,
		})
	})

	stats, err := client.CatalogStats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Entries != 120 || stats.Source != "cache" || !stats.BuiltAt.Equal(builtAt) {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRebuild(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/admin/rebuild" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(RebuildJob{JobID: "job-7", Status: "started"})
	})

	job, err := client.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if job.JobID != "job-7" || job.Status != "started" {
		t.Errorf("job = %+v", job)
	}
}

func TestRebuild_Conflict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeErrorEnvelope(w, http.StatusConflict, "rebuild_in_progress", "rebuild already in progress")
	})

	_, err := client.Rebuild(context.Background())
	if !errors.Is(err, ErrRebuildInProgress) {
		t.Fatalf("err = %v, want ErrRebuildInProgress", err)
	}
}

func TestHealth_DegradedStillReturnsReport(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthStatus{
			Status:  "degraded",
			Checks:  map[string]string{"catalog": "ok", "encoder": "error"},
			Version: "dev",
		})
	})

	status, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if status.Status != "degraded" || status.Checks["encoder"] != "error" {
		t.Errorf("status = %+v", status)
	}
}

func TestHealth_OK(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(HealthStatus{
			Status: "ok",
			Checks: map[string]string{"catalog": "ok"},
		})
	})

	status, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if status.Status != "ok" {
		t.Errorf("status = %+v", status)
	}
}

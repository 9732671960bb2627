package httpapi

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pixdex/internal/domain"
	cataloguc "github.com/kailas-cloud/pixdex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/pixdex/internal/usecase/health"
)

type mockSearcher struct {
	results []domain.SearchResult
	err     error
	gotK    int
	gotLen  int
}

func (m *mockSearcher) Search(_ context.Context, image []byte, k int) ([]domain.SearchResult, error) {
	m.gotK = k
	m.gotLen = len(image)
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

type mockCatalogAdmin struct {
	stats      cataloguc.Stats
	jobID      string
	rebuildErr error
}

func (m *mockCatalogAdmin) Stats() cataloguc.Stats { return m.stats }

func (m *mockCatalogAdmin) Rebuild(_ context.Context) (string, error) {
	if m.rebuildErr != nil {
		return "", m.rebuildErr
	}
	return m.jobID, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type testDeps struct {
	search  *mockSearcher
	catalog *mockCatalogAdmin
	health  *mockHealth
}

func newTestServer(t *testing.T, maxUpload int64) (*httptest.Server, *testDeps) {
	t.Helper()
	deps := &testDeps{
		search:  &mockSearcher{results: []domain.SearchResult{}},
		catalog: &mockCatalogAdmin{jobID: "job-1"},
		health:  &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{"catalog": healthuc.CheckOK}}},
	}
	srv := NewServer(deps.search, deps.catalog, deps.health, maxUpload, zap.NewNop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, deps
}

// multipartUpload builds a multipart body with a single file field.
func multipartUpload(t *testing.T, field string, payload []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, "query.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range extra {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func postMultipart(t *testing.T, url, field string, payload []byte, extra map[string]string) *http.Response {
	t.Helper()
	body, contentType := multipartUpload(t, field, payload, extra)
	resp, err := http.Post(url, contentType, body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

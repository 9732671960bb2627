// Package httpapi exposes the search service over HTTP: a chi router, JSON
// error envelopes and a sentinel-to-status mapping for domain errors.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pixdex/internal/domain"
	"github.com/kailas-cloud/pixdex/internal/metrics"
	cataloguc "github.com/kailas-cloud/pixdex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/pixdex/internal/usecase/health"
	"github.com/kailas-cloud/pixdex/internal/version"
)

// Searcher answers one similarity query.
type Searcher interface {
	Search(ctx context.Context, image []byte, k int) ([]domain.SearchResult, error)
}

// CatalogAdmin exposes snapshot stats and the rebuild trigger.
type CatalogAdmin interface {
	Stats() cataloguc.Stats
	Rebuild(ctx context.Context) (string, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorMapping pairs a domain sentinel with its HTTP rendering.
type errorMapping struct {
	sentinel error
	status   int
	code     string
}

// Server holds the HTTP handlers for the search API.
type Server struct {
	search         Searcher
	catalog        CatalogAdmin
	health         HealthChecker
	maxUploadBytes int64
	logger         *zap.Logger
	errorMappings  []errorMapping
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, catalog CatalogAdmin, health HealthChecker, maxUploadBytes int64, logger *zap.Logger) *Server {
	return &Server{
		search:         search,
		catalog:        catalog,
		health:         health,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
		errorMappings: []errorMapping{
			{domain.ErrInvalidImage, http.StatusBadRequest, "invalid_image"},
			{domain.ErrEncoderRejected, http.StatusUnprocessableEntity, "encoder_rejected"},
			{domain.ErrEncoderThrottled, http.StatusTooManyRequests, "encoder_unavailable"},
			{domain.ErrEncoderAuth, http.StatusBadGateway, "encoder_unavailable"},
			{domain.ErrEncoderUnavailable, http.StatusBadGateway, "encoder_unavailable"},
			{domain.ErrRebuildInProgress, http.StatusConflict, "rebuild_in_progress"},
		},
	}
}

// Router assembles the chi router with the full middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch("image", true))
		r.Get("/catalog/stats", s.handleStats)
		r.Post("/admin/rebuild", s.handleRebuild)
	})

	// Route kept for callers of the system this service replaced.
	r.Post("/find-similar-products/", s.handleSearch("file", false))

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// handleSearch builds the multipart search handler. fileField names the form
// field carrying the image; allowK enables the k form/query parameter.
func (s *Server) handleSearch(fileField string, allowK bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

		file, _, err := r.FormFile(fileField)
		if err != nil {
			if isBodyTooLarge(err) {
				writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large",
					fmt.Sprintf("upload exceeds %d bytes", s.maxUploadBytes))
				return
			}
			writeError(w, http.StatusBadRequest, "invalid_request",
				fmt.Sprintf("multipart field %q is required", fileField))
			return
		}
		defer func() { _ = file.Close() }()

		image, err := io.ReadAll(file)
		if err != nil {
			if isBodyTooLarge(err) {
				writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large",
					fmt.Sprintf("upload exceeds %d bytes", s.maxUploadBytes))
				return
			}
			writeError(w, http.StatusBadRequest, "invalid_request", "failed to read upload")
			return
		}

		k := 0
		if allowK {
			k, err = parseK(r)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
				return
			}
		}

		results, err := s.search.Search(r.Context(), image, k)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, searchResponse{Results: resultsToItems(results)})
	}
}

// handleStats reports the current snapshot header.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Stats())
}

// handleRebuild triggers an asynchronous catalog rebuild.
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	jobID, err := s.catalog.Rebuild(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, rebuildResponse{JobID: jobID, Status: "started"})
}

// handleHealth renders the aggregated health report.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}

	writeJSON(w, status, healthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

// parseK reads the optional k parameter from the form or query string.
func parseK(r *http.Request) (int, error) {
	raw := r.FormValue("k")
	if raw == "" {
		raw = r.URL.Query().Get("k")
	}
	if raw == "" {
		return 0, nil
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 1 {
		return 0, errors.New("k must be a positive integer")
	}
	return k, nil
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range s.errorMappings {
		if errors.Is(err, m.sentinel) {
			s.logger.Warn("request failed",
				zap.String("path", r.URL.Path),
				zap.String("code", m.code),
				zap.Error(err),
			)
			writeError(w, m.status, m.code, m.sentinel.Error())
			return
		}
	}
	s.logger.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal", "internal error")
}

type searchResponse struct {
	Results []searchResultItem `json:"results"`
}

type searchResultItem struct {
	Product    domain.Product `json:"product"`
	Similarity float64        `json:"similarity"`
}

type rebuildResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func resultsToItems(results []domain.SearchResult) []searchResultItem {
	items := make([]searchResultItem, len(results))
	for i, r := range results {
		items[i] = searchResultItem{Product: r.Product, Similarity: r.Similarity}
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

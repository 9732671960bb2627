// Package openai reaches the image encoder over an OpenAI-compatible
// embeddings endpoint. Images travel as data URIs in the request input.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pixdex/internal/domain"
	"github.com/kailas-cloud/pixdex/internal/metrics"
)

const opEncode = "encode"

// Encoder is an image embedding provider using the OpenAI-compatible API.
type Encoder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     *zap.Logger
}

// Config holds the encoder endpoint settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewEncoder creates an OpenAI-compatible image encoder client.
func NewEncoder(cfg *Config) *Encoder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Encoder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		logger:     cfg.Logger,
	}
}

// Encode implements domain.Encoder. The image is sent as a data URI; the
// response must carry exactly one vector of the configured dimension.
func (e *Encoder) Encode(ctx context.Context, image []byte) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{dataURI(image)},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	start := time.Now()

	resp, err := e.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.EncoderRequestsTotal.WithLabelValues(opEncode, "error").Inc()
		return nil, parseAPIError(err)
	}

	if len(resp.Data) != 1 {
		metrics.EncoderRequestsTotal.WithLabelValues(opEncode, "error").Inc()
		return nil, fmt.Errorf("expected 1 embedding, got %d: %w", len(resp.Data), domain.ErrEncoderUnavailable)
	}
	vec := resp.Data[0].Embedding
	if e.dimensions > 0 && len(vec) != e.dimensions {
		metrics.EncoderRequestsTotal.WithLabelValues(opEncode, "error").Inc()
		return nil, fmt.Errorf("encoder returned %d dimensions, expected %d: %w",
			len(vec), e.dimensions, domain.ErrEncoderUnavailable)
	}

	metrics.EncoderRequestsTotal.WithLabelValues(opEncode, "success").Inc()
	metrics.EncoderRequestDuration.WithLabelValues(opEncode).Observe(duration.Seconds())

	return vec, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Encoder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// dataURI wraps image bytes in a data: URI with the sniffed media type.
func dataURI(image []byte) string {
	mime := http.DetectContentType(image)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
}

// parseAPIError maps API failures onto domain sentinels by HTTP status.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("encoder API error %d: %s: %w",
			reqErr.HTTPStatusCode, detail, sentinelForStatus(reqErr.HTTPStatusCode))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("encoder API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, sentinelForStatus(apiErr.HTTPStatusCode))
	}

	return fmt.Errorf("encoder request failed: %w: %w", domain.ErrEncoderUnavailable, err)
}

func sentinelForStatus(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return domain.ErrEncoderRejected
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrEncoderAuth
	case http.StatusTooManyRequests:
		return domain.ErrEncoderThrottled
	default:
		return domain.ErrEncoderUnavailable
	}
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}

// Package openai provides an embedding service adapter for any
// OpenAI-compatible embeddings API (OpenAI, Ollama, llama.cpp server).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
	"github.com/kbdb-labs/kbdb/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://127.0.0.1:11434/v1"
	DefaultDimensions = 768
	DefaultTimeout    = 30 * time.Second
)

// Config holds configuration for the embedding service.
type Config struct {
	// BaseURL is the API base URL (default: local Ollama).
	BaseURL string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// Dimensions is the system-fixed vector width every response must
	// match (default: 768).
	Dimensions int

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond throttles outbound calls; 0 disables throttling.
	RequestsPerSecond float64
}

// EmbeddingService generates query embeddings. The embedding model is not
// fixed at construction: each call requests the model named by the
// modality's strategy, so one client serves every registered modality.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	dimensions int
	limiter    *rate.Limiter
}

// embeddingRequest is the OpenAI API request format.
type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingResponse is the OpenAI API response format.
type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewEmbeddingService creates a new embedding service client.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		dimensions: cfg.Dimensions,
		limiter:    limiter,
	}
}

// Embed generates a vector for the given text under the modality's
// strategy. The strategy's prefix/suffix transform is applied before the
// call and the returned vector must match the configured dimensionality.
// No caching and no retries: each query embeds fresh, and failures surface
// to the caller.
func (s *EmbeddingService) Embed(ctx context.Context, text string, strategy domain.Strategy) ([]float32, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %v", domain.ErrEmbeddingService, err)
		}
	}

	reqBody := embeddingRequest{
		Model: strategy.Model,
		Input: []string{strategy.Apply(text)},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", domain.ErrEmbeddingService, err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/embeddings",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrEmbeddingService, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", domain.ErrEmbeddingService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrEmbeddingService, err)
	}

	var embedResp embeddingResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrEmbeddingService, err)
	}

	if embedResp.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmbeddingService, embedResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrEmbeddingService, resp.StatusCode, string(body))
	}

	if len(embedResp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrEmbeddingService)
	}

	raw := embedResp.Data[0].Embedding
	if len(raw) != s.dimensions {
		return nil, fmt.Errorf("%w: %w: got %d, want %d",
			domain.ErrEmbeddingService, domain.ErrDimensionMismatch, len(raw), s.dimensions)
	}

	embedding := make([]float32, len(raw))
	for i, v := range raw {
		embedding[i] = float32(v)
	}

	return embedding, nil
}

// Dimensions returns the system-fixed embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// Ping validates the service is reachable by checking the /models endpoint.
// This is a lightweight check that validates connectivity and the API key
// without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: create ping request: %v", domain.ErrEmbeddingService, err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ping failed: %v", domain.ErrEmbeddingService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ping returned status %d", domain.ErrEmbeddingService, resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

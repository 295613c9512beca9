package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/pgvector/pgvector-go"
)

// ErrQuotaExhausted marks a provider response that signals depleted credits
// (HTTP 402). It drives fallback the same way any other provider failure
// does, but is kept distinct for logging.
var ErrQuotaExhausted = errors.New("provider quota exhausted")

// EmbeddingProvider is one inference service capable of embedding text.
type EmbeddingProvider interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingService tries each configured provider in order and returns the
// first successful embedding. A vector whose width does not match the
// configured dimensionality is rejected and the chain moves on; storing it
// would poison the fixed-width vector column.
type EmbeddingService struct {
	providers  []EmbeddingProvider
	dimensions int
}

func NewEmbeddingService(dimensions int, providers ...EmbeddingProvider) *EmbeddingService {
	return &EmbeddingService{providers: providers, dimensions: dimensions}
}

// GenerateEmbedding embeds a single text, falling back across providers.
// It fails only when every configured provider has failed, with one
// aggregated error carrying each provider's failure.
func (s *EmbeddingService) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	if len(s.providers) == 0 {
		return pgvector.Vector{}, fmt.Errorf("%w: no embedding providers configured", ErrProviderExhausted)
	}

	var failures []error
	for _, p := range s.providers {
		vec, err := p.Embed(ctx, text)
		if err != nil {
			if errors.Is(err, ErrQuotaExhausted) {
				log.Printf("embedding provider %s quota exhausted, trying next provider", p.Name())
			} else {
				log.Printf("embedding provider %s failed: %v", p.Name(), err)
			}
			failures = append(failures, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if len(vec) != s.dimensions {
			log.Printf("embedding provider %s returned %d dimensions, want %d", p.Name(), len(vec), s.dimensions)
			failures = append(failures, fmt.Errorf("%s: %w: got %d, want %d", p.Name(), ErrDimensionMismatch, len(vec), s.dimensions))
			continue
		}
		return pgvector.NewVector(vec), nil
	}

	return pgvector.Vector{}, fmt.Errorf("%w: %w", ErrProviderExhausted, errors.Join(failures...))
}

// Dimensions returns the configured embedding width
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint. Both
// OpenRouter and the Hugging Face router speak this wire format.
type OpenAIEmbedder struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOpenAIEmbedder(name, apiKey, baseURL, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		name:       name,
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *OpenAIEmbedder) Name() string {
	return p.name
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

func (p *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	jsonBody, err := json.Marshal(embeddingRequest{Input: text, Model: p.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// 402 is the insufficient-credits signal
	if resp.StatusCode == http.StatusPaymentRequired {
		return nil, fmt.Errorf("%w: %s", ErrQuotaExhausted, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(embResp.Data) == 0 || len(embResp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	return embResp.Data[0].Embedding, nil
}
